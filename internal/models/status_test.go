// internal/models/status_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// 1. Status Normalization
// ==========================

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Status
	}{
		{"snake case under review", "under_review", StatusUnderReview},
		{"kebab case in review", "in-review", StatusUnderReview},
		{"capitalized in review", "In_Review", StatusUnderReview},
		{"bare review", "review", StatusUnderReview},
		{"capitalized pending", "Pending", StatusPending},
		{"upper case submitted", "SUBMITTED", StatusSubmitted},
		{"approved lower", "approved", StatusApproved},
		{"approved capitalized", "Approved", StatusApproved},
		{"rejected with whitespace", "  rejected ", StatusRejected},
		{"revision required spaced", "Revision Required", StatusRevisionRequired},
		{"changes requested synonym", "changes_requested", StatusRevisionRequired},
		{"draft", "draft", StatusDraft},
		{"completed", "completed", StatusCompleted},
		{"unmapped string", "archived", StatusUnknown},
		{"empty string", "", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeStatus(tt.raw))
		})
	}
}

// ==========================
// 2. Terminal Statuses
// ==========================

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusUnderReview.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusRevisionRequired.IsTerminal())
	assert.False(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusUnknown.IsTerminal())
}

// ==========================
// 3. Document Version Pointer
// ==========================

func TestCurrentVersionOf(t *testing.T) {
	doc := Document{
		CurrentVersion: 2,
		Versions: []DocumentVersion{
			{ID: "v1", VersionNumber: 1},
			{ID: "v2", VersionNumber: 2},
			{ID: "v3", VersionNumber: 3},
		},
	}

	got := CurrentVersionOf(doc)
	assert.NotNil(t, got)
	assert.Equal(t, "v2", got.ID)

	// Dangling pointer falls back to the latest upload.
	doc.CurrentVersion = 9
	got = CurrentVersionOf(doc)
	assert.NotNil(t, got)
	assert.Equal(t, "v3", got.ID)

	assert.Nil(t, CurrentVersionOf(Document{}))
}
