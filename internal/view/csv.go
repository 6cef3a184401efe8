// internal/view/csv.go
package view

import (
	"strconv"
	"strings"
	"time"

	"vyapara-admin/internal/models"
)

// applicationColumns is the fixed column order of the applications export.
var applicationColumns = []string{
	"Application ID", "Applicant Name", "Business Name", "Business Type",
	"Status", "Submitted Date", "Assignee", "Aging (days)",
}

// EscapeCSV applies RFC-4180-style quoting: a value containing a comma,
// double quote, or newline is wrapped in double quotes with internal quotes
// doubled; everything else passes through unchanged.
func EscapeCSV(value string) string {
	if !strings.ContainsAny(value, "\",\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// ApplicationsCSV renders the applications export: one header row, then one
// row per table row, comma-delimited.
func ApplicationsCSV(rows []TableRow) string {
	var b strings.Builder
	writeRecord(&b, applicationColumns)

	for _, r := range rows {
		submitted := ""
		if r.SubmittedDate != nil {
			submitted = r.SubmittedDate.UTC().Format(time.RFC3339)
		}
		writeRecord(&b, []string{
			r.ID, r.ApplicantName, r.BusinessName, r.BusinessType,
			r.Status, submitted, r.Assignee, strconv.Itoa(r.Aging),
		})
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// StatisticsCSV renders the dashboard metrics export as Metric/Value pairs.
// Every field is quoted, matching the dashboard's report download.
func StatisticsCSV(snap models.StatisticsSnapshot) string {
	pairs := [][2]string{
		{"Metric", "Value"},
		{"Total Applications", strconv.Itoa(snap.Applications.Total)},
		{"Pending Applications", strconv.Itoa(snap.Applications.Pending)},
		{"Approved Applications", strconv.Itoa(snap.Applications.Approved)},
		{"Rejected Applications", strconv.Itoa(snap.Applications.Rejected)},
		{"Applications in Review", strconv.Itoa(snap.Applications.InReview)},
		{"Average Processing Time (days)", strconv.FormatFloat(snap.Performance.AvgProcessingTime, 'f', -1, 64)},
		{"SLA Compliance (%)", strconv.Itoa(snap.Performance.SLACompliance)},
		{"Approval Rate (%)", strconv.Itoa(snap.Performance.ApprovalRate)},
		{"Rejection Rate (%)", strconv.Itoa(snap.Performance.RejectionRate)},
		{"Weekly Growth (%)", strconv.Itoa(snap.Trends.WeeklyGrowth)},
		{"Monthly Growth (%)", strconv.Itoa(snap.Trends.MonthlyGrowth)},
		{"Conversion Rate (%)", strconv.Itoa(snap.Trends.ConversionRate)},
	}

	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, quoteAlways(p[0])+","+quoteAlways(p[1]))
	}
	return strings.Join(lines, "\n")
}

func quoteAlways(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func writeRecord(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(EscapeCSV(f))
	}
	b.WriteByte('\n')
}
