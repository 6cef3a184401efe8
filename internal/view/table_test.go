// internal/view/table_test.go
package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vyapara-admin/internal/models"
)

var rowNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// ==========================
// 1. Aging
// ==========================

func TestAging(t *testing.T) {
	submitted := rowNow.AddDate(0, 0, -3)
	future := rowNow.Add(6 * time.Hour)

	tests := []struct {
		name      string
		submitted *time.Time
		expected  int
	}{
		{"three days old", &submitted, 3},
		{"unsubmitted", nil, 0},
		{"submitted in the future", &future, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Aging(tt.submitted, rowNow))
		})
	}
}

func TestAgingFloorsPartialDays(t *testing.T) {
	submitted := rowNow.Add(-47 * time.Hour)
	assert.Equal(t, 1, Aging(&submitted, rowNow))
}

// ==========================
// 2. Assignee
// ==========================

func TestAssignee(t *testing.T) {
	tests := []struct {
		name     string
		steps    []models.ApplicationStep
		expected string
	}{
		{
			name: "first incomplete step with assignee wins",
			steps: []models.ApplicationStep{
				{StepOrder: 1, IsCompleted: true, AssignedTo: "u1", AssigneeName: "Asha"},
				{StepOrder: 2, IsCompleted: false, AssignedTo: "u2", AssigneeName: "Ravi"},
				{StepOrder: 3, IsCompleted: false, AssignedTo: "u3", AssigneeName: "Mei"},
			},
			expected: "Ravi",
		},
		{
			name: "all complete falls back to first assigned step",
			steps: []models.ApplicationStep{
				{StepOrder: 1, IsCompleted: true},
				{StepOrder: 2, IsCompleted: true, AssignedTo: "u2", AssigneeName: "Asha"},
			},
			expected: "Asha",
		},
		{
			name: "assignee id used when name missing",
			steps: []models.ApplicationStep{
				{StepOrder: 1, IsCompleted: false, AssignedTo: "u9"},
			},
			expected: "u9",
		},
		{
			name:     "no steps",
			steps:    nil,
			expected: "Unassigned",
		},
		{
			name: "steps without assignees",
			steps: []models.ApplicationStep{
				{StepOrder: 1}, {StepOrder: 2, IsCompleted: true},
			},
			expected: "Unassigned",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Assignee(tt.steps))
		})
	}
}

// ==========================
// 3. Row Mapping
// ==========================

func TestToTableRow(t *testing.T) {
	submitted := rowNow.AddDate(0, 0, -2)
	app := models.Application{
		ID:            "app-1",
		Status:        "under_review",
		SubmittedAt:   &submitted,
		ApplicantName: "Nimal Perera",
		BusinessName:  "Ceylon Spices",
		BusinessType:  "Retail",
	}

	row := ToTableRow(app, nil, rowNow)
	assert.Equal(t, "app-1", row.ID)
	assert.Equal(t, "Nimal Perera", row.ApplicantName)
	assert.Equal(t, "Ceylon Spices", row.BusinessName)
	assert.Equal(t, 2, row.Aging)
	assert.Equal(t, "Unassigned", row.Assignee)
}

func TestToTableRowPlaceholders(t *testing.T) {
	row := ToTableRow(models.Application{ID: "app-2", Status: "draft"}, nil, rowNow)
	assert.Equal(t, "—", row.ApplicantName)
	assert.Equal(t, "—", row.BusinessName)
	assert.Equal(t, "—", row.BusinessType)
	assert.Equal(t, 0, row.Aging)
}
