package quarantine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvu/mailquar/internal/model"
)

// Timestamps more than a day apart land on distinct calendar days in
// every time zone, keeping these tests independent of the local zone.
const daySpan = int64(90000)

func TestSortAndGroupEmpty(t *testing.T) {
	assert.Empty(t, SortAndGroup(nil))
	assert.Empty(t, SortAndGroup([]model.Mail{}))
}

func TestSortAndGroupNewestFirst(t *testing.T) {
	mails := []model.Mail{
		{ID: "old", Time: 1000},
		{ID: "new", Time: 1000 + daySpan},
		{ID: "mid", Time: 2000},
	}

	entries := SortAndGroup(mails)
	require.Len(t, entries, 5)

	assert.True(t, entries[0].IsHeading())
	assert.Equal(t, "new", entries[1].Mail.ID)
	assert.True(t, entries[2].IsHeading())
	assert.Equal(t, "mid", entries[3].Mail.ID)
	assert.Equal(t, "old", entries[4].Mail.ID)
}

func TestSortAndGroupTieBreakIsDeterministic(t *testing.T) {
	// Same timestamp; order must come from the field tuple, starting
	// with the sender, not from input order.
	mails := []model.Mail{
		{ID: "2", From: "zed@example.com", Subject: "b", Time: 1000},
		{ID: "1", From: "ann@example.com", Subject: "a", Time: 1000},
		{ID: "3", From: "ann@example.com", Subject: "c", Time: 1000},
	}

	entries := SortAndGroup(mails)
	require.Len(t, entries, 4)

	assert.Equal(t, "1", entries[1].Mail.ID)
	assert.Equal(t, "3", entries[2].Mail.ID)
	assert.Equal(t, "2", entries[3].Mail.ID)
}

func TestSortAndGroupStableUnderInputOrder(t *testing.T) {
	mails := []model.Mail{
		{ID: "a", From: "x@example.com", Subject: "s1", SpamLevel: 3, Time: 1000},
		{ID: "b", From: "x@example.com", Subject: "s2", SpamLevel: 5, Time: 1000},
		{ID: "c", From: "y@example.com", Subject: "s3", SpamLevel: 1, Time: 1000 + daySpan},
		{ID: "d", From: "z@example.com", Subject: "s4", SpamLevel: 9, Time: 1000 + 2*daySpan},
		{ID: "e", From: "x@example.com", Subject: "s1", SpamLevel: 3, Time: 2000},
	}

	want := SortAndGroup(mails)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]model.Mail, len(mails))
		copy(shuffled, mails)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		assert.Equal(t, want, SortAndGroup(shuffled))
	}
}

func TestSortAndGroupHeadingPlacement(t *testing.T) {
	mails := []model.Mail{
		{ID: "1", Time: 1000},
		{ID: "2", Time: 1000},
		{ID: "3", Time: 1000 + daySpan},
	}

	entries := SortAndGroup(mails)
	require.Len(t, entries, 5)

	// Headings carry the day of the entries that follow, never appear
	// adjacent, and the first entry is always a heading.
	assert.True(t, entries[0].IsHeading())
	assert.Equal(t, model.Mail{ID: "3", Time: 1000 + daySpan}.Day(), entries[0].Heading)
	assert.Equal(t, "3", entries[1].Mail.ID)
	assert.True(t, entries[2].IsHeading())
	assert.Equal(t, model.Mail{ID: "1", Time: 1000}.Day(), entries[2].Heading)
	assert.Equal(t, "1", entries[3].Mail.ID)
	assert.Equal(t, "2", entries[4].Mail.ID)

	for i := 1; i < len(entries); i++ {
		if entries[i].IsHeading() {
			assert.False(t, entries[i-1].IsHeading(), "adjacent headings at %d", i)
		}
	}
}

func TestSortAndGroupPreservesInput(t *testing.T) {
	mails := []model.Mail{
		{ID: "b", Time: 1000},
		{ID: "a", Time: 2000},
	}

	_ = SortAndGroup(mails)

	assert.Equal(t, "b", mails[0].ID)
	assert.Equal(t, "a", mails[1].ID)
}
