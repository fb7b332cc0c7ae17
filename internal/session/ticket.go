package session

import (
	"net/url"
	"strings"
)

// TicketPrefix is the fixed prefix of a one-time quarantine access
// ticket. Anything else in the ticket parameter is ignored.
const TicketPrefix = "PMGQUAR:"

// quarantinePath is the entry path on which ticket auto-login applies.
const quarantinePath = "/quarantine"

// TicketLogin is the credential material extracted from a quarantine
// entry URL: the percent-decoded one-time ticket and the username
// embedded in its second colon-delimited field.
type TicketLogin struct {
	Username string
	Ticket   string
}

// ParseQuarantineURL extracts a ticket login from a quarantine entry
// URL, the link a user receives in their spam report mail:
//
//	https://gw.example.com:8006/quarantine?ticket=PMGQUAR%3Auser%40example.com%3A...
//
// It returns ok=false when the URL does not parse, the path is not the
// quarantine entry path, the ticket parameter is absent, or the
// decoded ticket does not start with the quarantine prefix.
func ParseQuarantineURL(raw string) (TicketLogin, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return TicketLogin{}, false
	}
	if u.Path != quarantinePath {
		return TicketLogin{}, false
	}

	// Query().Get percent-decodes the parameter value.
	ticket := u.Query().Get("ticket")
	if !strings.HasPrefix(ticket, TicketPrefix) {
		return TicketLogin{}, false
	}

	fields := strings.Split(ticket, ":")
	if len(fields) < 2 || fields[1] == "" {
		return TicketLogin{}, false
	}

	return TicketLogin{Username: fields[1], Ticket: ticket}, true
}
