// internal/models/status.go
package models

import "strings"

// Status is the canonical application status. Stored status strings are
// inconsistent (snake_case, kebab-case, Capitalized, upper), so every
// comparison goes through NormalizeStatus first.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusSubmitted        Status = "submitted"
	StatusPending          Status = "pending"
	StatusUnderReview      Status = "under_review"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusRevisionRequired Status = "revision_required"
	StatusCompleted        Status = "completed"
	StatusUnknown          Status = "unknown"
)

var statusSynonyms = map[string]Status{
	"draft":             StatusDraft,
	"submitted":         StatusSubmitted,
	"pending":           StatusPending,
	"under_review":      StatusUnderReview,
	"in_review":         StatusUnderReview,
	"review":            StatusUnderReview,
	"approved":          StatusApproved,
	"rejected":          StatusRejected,
	"revision_required": StatusRevisionRequired,
	"changes_requested": StatusRevisionRequired,
	"completed":         StatusCompleted,
}

// NormalizeStatus maps a stored status string to its canonical value.
// Unmapped strings become StatusUnknown rather than being silently dropped
// from counts.
func NormalizeStatus(raw string) Status {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	if s, ok := statusSynonyms[key]; ok {
		return s
	}
	return StatusUnknown
}

// IsTerminal reports whether the status marks the end of active review.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}
