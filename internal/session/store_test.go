package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvu/mailquar/tests/testutil"
)

// fakeExchanger scripts the /access/ticket endpoint and records the
// request bodies it received.
type fakeExchanger struct {
	resp ticketResponse
	err  error

	requests []ticketRequest
}

func (f *fakeExchanger) Post(_ context.Context, path string, body, result interface{}) error {
	if path != "/access/ticket" {
		return errors.New("unexpected path: " + path)
	}
	f.requests = append(f.requests, body.(ticketRequest))
	if f.err != nil {
		return f.err
	}
	*(result.(*ticketResponse)) = f.resp
	return nil
}

func cachedCredential(t *testing.T, cache *testutil.MemoryCache) Credential {
	t.Helper()
	var cred Credential
	require.NoError(t, json.Unmarshal([]byte(cache.Value()), &cred))
	return cred
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name   string
		cached string
		want   bool
	}{
		{"empty cache", "", false},
		{"malformed json", "{not json", false},
		{"missing ticket", `{"username":"u@example.com","realm":"quarantine"}`, false},
		{"missing username", `{"ticket":"PMGQUAR:u:sig"}`, false},
		{"complete credential", `{"username":"u@example.com","realm":"quarantine","ticket":"PMGQUAR:u:sig","csrf_token":"tok"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &testutil.MemoryCache{}
			cache.Seed(tt.cached)

			s := NewStore(&fakeExchanger{}, cache, 0, nil)
			assert.Equal(t, tt.want, s.Restore())
			assert.Equal(t, tt.want, s.LoggedIn())
		})
	}
}

func TestRestoredCredentialFeedsRequests(t *testing.T) {
	cache := &testutil.MemoryCache{}
	cache.Seed(`{"username":"u@example.com","ticket":"PMGQUAR:u:sig","csrf_token":"tok"}`)

	s := NewStore(&fakeExchanger{}, cache, 0, nil)
	require.True(t, s.Restore())

	ticket, csrf, ok := s.AuthTokens()
	require.True(t, ok)
	assert.Equal(t, "PMGQUAR:u:sig", ticket)
	assert.Equal(t, "tok", csrf)
}

func TestLoginWithTicket(t *testing.T) {
	ex := &fakeExchanger{resp: ticketResponse{
		Username:            "dietmar@proxmox.com",
		Ticket:              "PMGQUAR:dietmar@proxmox.com:66DF0F62::signed",
		CSRFPreventionToken: "csrf-tok",
	}}
	cache := &testutil.MemoryCache{}
	s := NewStore(ex, cache, 0, nil)

	err := s.LoginWithTicket(context.Background(), TicketLogin{
		Username: "dietmar@proxmox.com",
		Ticket:   "PMGQUAR:dietmar@proxmox.com:66DF0F62::onetime",
	})
	require.NoError(t, err)

	// The one-time ticket rides in the password field of the exchange.
	require.Len(t, ex.requests, 1)
	assert.Equal(t, "dietmar@proxmox.com", ex.requests[0].Username)
	assert.Equal(t, "PMGQUAR:dietmar@proxmox.com:66DF0F62::onetime", ex.requests[0].Password)
	assert.Equal(t, "quarantine", ex.requests[0].Path)

	cred, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "dietmar@proxmox.com", cred.Username)
	assert.Equal(t, "proxmox.com", cred.Realm)
	assert.Equal(t, "csrf-tok", cred.CSRFToken)

	// The credential was persisted and a redirect is pending.
	assert.Equal(t, cred, cachedCredential(t, cache))
	assert.True(t, s.ConsumeRedirect())
	assert.False(t, s.ConsumeRedirect())
}

func TestLoginWithTicketFailure(t *testing.T) {
	ex := &fakeExchanger{err: errors.New("ticket expired")}
	s := NewStore(ex, &testutil.MemoryCache{}, 0, nil)

	err := s.LoginWithTicket(context.Background(), TicketLogin{Username: "u", Ticket: "PMGQUAR:u:old"})
	assert.EqualError(t, err, "ticket expired")
	assert.False(t, s.LoggedIn())
	assert.False(t, s.ConsumeRedirect())
}

func TestLoginJoinsRealm(t *testing.T) {
	tests := []struct {
		name     string
		username string
		realm    string
		want     string
	}{
		{"plain user", "root", "pam", "root@pam"},
		{"user already qualified", "root@pam", "pmg", "root@pam"},
		{"empty realm", "root", "", "root"},
		{"mail address user", "dietmar@proxmox.com@quarantine", "pmg", "dietmar@proxmox.com@quarantine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &fakeExchanger{resp: ticketResponse{
				Username: tt.want,
				Ticket:   "PMG:ticket",
			}}
			s := NewStore(ex, &testutil.MemoryCache{}, 0, nil)

			require.NoError(t, s.Login(context.Background(), tt.username, tt.realm, "secret"))
			require.Len(t, ex.requests, 1)
			assert.Equal(t, tt.want, ex.requests[0].Username)
			assert.Equal(t, "secret", ex.requests[0].Password)
		})
	}
}

func TestObserversSeeLoginAndLogout(t *testing.T) {
	ex := &fakeExchanger{resp: ticketResponse{Username: "u@pmg", Ticket: "PMG:t"}}
	cache := &testutil.MemoryCache{}
	s := NewStore(ex, cache, 0, nil)

	var events []bool
	unsubscribe := s.Subscribe(func(loggedIn bool) { events = append(events, loggedIn) })

	require.NoError(t, s.Login(context.Background(), "u", "pmg", "pw"))
	s.Logout()

	assert.Equal(t, []bool{true, false}, events)
	assert.False(t, s.LoggedIn())
	assert.Empty(t, cache.Value())

	unsubscribe()
	require.NoError(t, s.Login(context.Background(), "u", "pmg", "pw"))
	assert.Equal(t, []bool{true, false}, events)
}

func TestSplitRealm(t *testing.T) {
	tests := []struct {
		in    string
		user  string
		realm string
	}{
		{"root@pam", "root", "pam"},
		{"dietmar@proxmox.com@quarantine", "dietmar@proxmox.com", "quarantine"},
		{"root", "root", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		user, realm := splitRealm(tt.in)
		assert.Equal(t, tt.user, user, tt.in)
		assert.Equal(t, tt.realm, realm, tt.in)
	}
}
