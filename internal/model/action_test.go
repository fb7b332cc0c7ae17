package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMailActionWireToken(t *testing.T) {
	tests := []struct {
		action MailAction
		token  string
		label  string
	}{
		{ActionDeliver, "deliver", "Deliver"},
		{ActionDelete, "delete", "Delete"},
		{ActionWhitelist, "whitelist", "Whitelist"},
		{ActionBlacklist, "blacklist", "Blacklist"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.token, tt.action.WireToken())
			assert.Equal(t, tt.label, tt.action.Label())
		})
	}
}

func TestListEntryIsHeading(t *testing.T) {
	assert.True(t, ListEntry{Heading: "2024-05-01"}.IsHeading())
	assert.False(t, ListEntry{Mail: &Mail{ID: "a"}}.IsHeading())
}
