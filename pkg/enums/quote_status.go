package enums

import "fmt"

// QuoteStatus tracks the lifecycle of a quote.
//
// Unlike orders this is not a forward-only chain: a sent quote may be pulled
// back to draft for edits, and any status becomes expired once the quote's
// validity date passes.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusSent,
	QuoteStatusAccepted,
	QuoteStatusRejected,
	QuoteStatusExpired,
}

// String implements fmt.Stringer.
func (s QuoteStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known QuoteStatus.
func (s QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no actor-triggered transition exists from s.
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusAccepted || s == QuoteStatusRejected || s == QuoteStatusExpired
}

// CanTransitionTo reports whether an actor may move a quote from s to target.
// Expiry is time-triggered and handled separately, never through this check.
func (s QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	switch s {
	case QuoteStatusDraft:
		return target == QuoteStatusSent
	case QuoteStatusSent:
		return target == QuoteStatusDraft || target == QuoteStatusAccepted || target == QuoteStatusRejected
	default:
		return false
	}
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}
