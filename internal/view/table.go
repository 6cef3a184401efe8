// Package view maps raw records into the view-model shapes consumed by the
// dashboard surfaces: table rows, CSV exports, and the merged document list.
// Everything here is a pure function over already-fetched data.
package view

import (
	"time"

	"vyapara-admin/internal/models"
)

// placeholder stands in for applicant and business fields the joins could
// not resolve.
const placeholder = "—"

// TableRow is one row of the applications table.
type TableRow struct {
	ID            string     `json:"id"`
	ApplicantName string     `json:"applicantName"`
	BusinessName  string     `json:"businessName"`
	BusinessType  string     `json:"businessType"`
	Status        string     `json:"status"`
	SubmittedDate *time.Time `json:"submittedDate,omitempty"`
	Assignee      string     `json:"assignee"`
	Aging         int        `json:"aging"`
}

// ToTableRow derives the display row for one application.
func ToTableRow(app models.Application, steps []models.ApplicationStep, now time.Time) TableRow {
	return TableRow{
		ID:            app.ID,
		ApplicantName: orPlaceholder(app.ApplicantName),
		BusinessName:  orPlaceholder(app.BusinessName),
		BusinessType:  orPlaceholder(app.BusinessType),
		Status:        app.Status,
		SubmittedDate: app.SubmittedAt,
		Assignee:      Assignee(steps),
		Aging:         Aging(app.SubmittedAt, now),
	}
}

// ToTableRows maps a record set, reusing each application's embedded steps
// when present.
func ToTableRows(apps []models.Application, stepsByApp map[string][]models.ApplicationStep, now time.Time) []TableRow {
	rows := make([]TableRow, 0, len(apps))
	for _, app := range apps {
		rows = append(rows, ToTableRow(app, stepsByApp[app.ID], now))
	}
	return rows
}

// Aging is the whole days since submission, never negative, and 0 for
// records that were never submitted.
func Aging(submitted *time.Time, now time.Time) int {
	if submitted == nil {
		return 0
	}
	days := int(now.Sub(*submitted).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Assignee scans the review steps for the first incomplete step with an
// assignee, falls back to the first step with any assignee, and finally to
// "Unassigned".
func Assignee(steps []models.ApplicationStep) string {
	for _, s := range steps {
		if !s.IsCompleted && s.AssignedTo != "" {
			return assigneeLabel(s)
		}
	}
	for _, s := range steps {
		if s.AssignedTo != "" {
			return assigneeLabel(s)
		}
	}
	return "Unassigned"
}

func assigneeLabel(s models.ApplicationStep) string {
	if s.AssigneeName != "" {
		return s.AssigneeName
	}
	return s.AssignedTo
}

func orPlaceholder(v string) string {
	if v == "" {
		return placeholder
	}
	return v
}
