// Package domain holds the pure donor-progress rules: status
// canonicalization, stage precedence, and the New/Returning classifier.
package domain

import "strings"

// Canonical status vocabulary. Every stage outcome collapses to one of
// these four values; anything unrecognized passes through lowercased so
// it can be spotted in review queues instead of being swallowed.
const (
	StatusPending    = "pending"
	StatusAccepted   = "accepted"
	StatusDeferred   = "deferred"
	StatusIneligible = "ineligible"
)

// CanonicalStatus maps a free-text stage outcome to the canonical
// vocabulary. Matching is case-insensitive substring, first rule wins.
// A raised review flag always wins over whatever text the record holds.
func CanonicalStatus(text string, needsReview bool) string {
	s := strings.ToLower(strings.TrimSpace(text))
	switch {
	case needsReview, s == "", s == StatusPending, s == "needs_review":
		return StatusPending
	case strings.Contains(s, "accept"):
		return StatusAccepted
	// "Permanently Deferred" must rank above the generic deferral match,
	// otherwise the permanent outcome would be unreachable.
	case strings.Contains(s, "permanent"):
		return StatusIneligible
	case strings.Contains(s, "defer"), strings.Contains(s, "refus"):
		return StatusDeferred
	case strings.Contains(s, "reject"), strings.Contains(s, "declin"):
		return StatusDeferred
	default:
		return s
	}
}

// IsCanonical reports whether s is one of the four fixed status values.
func IsCanonical(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeferred, StatusIneligible:
		return true
	}
	return false
}
