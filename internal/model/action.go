package model

import "fmt"

// MailAction is a disposition applied to a quarantined message.
type MailAction int

const (
	ActionDeliver MailAction = iota
	ActionDelete
	ActionWhitelist
	ActionBlacklist
)

// WireToken returns the lowercase token the gateway expects in the
// action field of a quarantine/content request.
func (a MailAction) WireToken() string {
	switch a {
	case ActionDeliver:
		return "deliver"
	case ActionDelete:
		return "delete"
	case ActionWhitelist:
		return "whitelist"
	case ActionBlacklist:
		return "blacklist"
	default:
		return ""
	}
}

// Label returns the human-readable name shown in the UI.
func (a MailAction) Label() string {
	switch a {
	case ActionDeliver:
		return "Deliver"
	case ActionDelete:
		return "Delete"
	case ActionWhitelist:
		return "Whitelist"
	case ActionBlacklist:
		return "Blacklist"
	default:
		return fmt.Sprintf("MailAction(%d)", int(a))
	}
}
