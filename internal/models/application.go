// internal/models/application.go
package models

import "time"

// Application is a business-registration submission under review. The list
// query joins the owning business and applicant profile, so the summary
// fields from those rows are carried inline.
type Application struct {
	ID                string     `json:"id"`
	ApplicationNumber string     `json:"applicationNumber"`
	ApplicantID       string     `json:"applicantId"`
	BusinessID        string     `json:"businessId"`
	Status            string     `json:"status"`
	CurrentStep       string     `json:"currentStep,omitempty"`
	RejectionReason   string     `json:"rejectionReason,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	SubmittedAt       *time.Time `json:"submittedAt,omitempty"`
	ApprovedAt        *time.Time `json:"approvedAt,omitempty"`
	RejectedAt        *time.Time `json:"rejectedAt,omitempty"`

	BusinessName      string `json:"businessName,omitempty"`
	BusinessType      string `json:"businessType,omitempty"`
	ProposedTradeName string `json:"proposedTradeName,omitempty"`
	ApplicantName     string `json:"applicantName,omitempty"`
}

// ApplicationDetail is the fully joined record returned by the detail read.
type ApplicationDetail struct {
	Application
	Business     *Business         `json:"business,omitempty"`
	Applicant    *UserProfile      `json:"applicant,omitempty"`
	Steps        []ApplicationStep `json:"steps"`
	Documents    []Document        `json:"documents"`
	Payments     []Payment         `json:"payments"`
	Appointments []Appointment     `json:"appointments"`
}

// ApplicationStep is one ordered step in an application's review pipeline.
type ApplicationStep struct {
	ID           string     `json:"id"`
	StepName     string     `json:"stepName"`
	StepOrder    int        `json:"stepOrder"`
	IsCompleted  bool       `json:"isCompleted"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	AssignedTo   string     `json:"assignedTo,omitempty"`
	AssigneeName string     `json:"assigneeName,omitempty"`
}

// Payment is a fee payment attached to an application.
type Payment struct {
	ID               string     `json:"id"`
	Amount           float64    `json:"amount"`
	Currency         string     `json:"currency"`
	Status           string     `json:"status"`
	PaymentReference string     `json:"paymentReference,omitempty"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
}

// Appointment is a scheduled meeting attached to an application.
type Appointment struct {
	ID              string     `json:"id"`
	AppointmentType string     `json:"appointmentType"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	AppointmentDate *time.Time `json:"appointmentDate,omitempty"`
	StartTime       string     `json:"startTime,omitempty"`
	EndTime         string     `json:"endTime,omitempty"`
	Status          string     `json:"status"`
	Location        string     `json:"location,omitempty"`
	MeetingLink     string     `json:"meetingLink,omitempty"`
}
