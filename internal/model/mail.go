package model

import "time"

// Mail is a single quarantined message as returned by the gateway's
// spam index. Entries are immutable once fetched; a reload replaces the
// whole set rather than patching individual entries.
type Mail struct {
	// ID is the server-assigned, opaque quarantine identifier.
	ID string `json:"id"`

	// From is the envelope sender as reported by the gateway.
	From string `json:"from"`

	// Subject is the decoded subject line.
	Subject string `json:"subject"`

	// SpamLevel is the spam score the gateway assigned on arrival.
	SpamLevel int64 `json:"spamlevel"`

	// Time is the arrival time in epoch seconds.
	Time int64 `json:"time"`
}

// Day returns the calendar date of the mail's arrival in the viewer's
// local time zone, formatted YYYY-MM-DD.
func (m Mail) Day() string {
	return time.Unix(m.Time, 0).Local().Format("2006-01-02")
}

// ListEntry is one row of the rendered quarantine list: either a date
// heading marking a day boundary or a mail entry. Derived from the
// fetched set on every successful load, never persisted.
type ListEntry struct {
	// Heading holds the YYYY-MM-DD day label when this entry is a
	// date heading; empty for mail rows.
	Heading string

	// Mail is set when this entry is a mail row.
	Mail *Mail
}

// IsHeading reports whether the entry is a day boundary marker.
func (e ListEntry) IsHeading() bool { return e.Heading != "" }
