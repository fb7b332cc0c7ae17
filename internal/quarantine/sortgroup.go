package quarantine

import (
	"sort"
	"strings"

	"github.com/nvu/mailquar/internal/model"
)

// SortAndGroup turns a fetched mail set into the rendered list
// projection: newest first, deterministically ordered, with a date
// heading emitted at every day boundary (viewer's local time zone).
// The output depends only on the set, not on fetch order, and an empty
// input produces an empty output. The input slice is not modified.
func SortAndGroup(mails []model.Mail) []model.ListEntry {
	sorted := make([]model.Mail, len(mails))
	copy(sorted, mails)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Time != b.Time {
			return a.Time > b.Time
		}
		return compareMail(a, b) < 0
	})

	entries := make([]model.ListEntry, 0, len(sorted))
	lastDay := ""
	for i := range sorted {
		mail := sorted[i]
		day := mail.Day()
		if day != lastDay {
			entries = append(entries, model.ListEntry{Heading: day})
			lastDay = day
		}
		entries = append(entries, model.ListEntry{Mail: &mail})
	}

	return entries
}

// compareMail is a total order over the full field tuple, used to
// break timestamp ties so equal-time entries never appear in arbitrary
// fetch order.
func compareMail(a, b model.Mail) int {
	if c := strings.Compare(a.From, b.From); c != 0 {
		return c
	}
	if c := strings.Compare(a.ID, b.ID); c != 0 {
		return c
	}
	if c := strings.Compare(a.Subject, b.Subject); c != 0 {
		return c
	}
	if a.SpamLevel != b.SpamLevel {
		if a.SpamLevel < b.SpamLevel {
			return -1
		}
		return 1
	}
	if a.Time != b.Time {
		if a.Time < b.Time {
			return -1
		}
		return 1
	}
	return 0
}
