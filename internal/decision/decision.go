// Package decision validates and submits review decisions: approve, reject,
// and request-changes. Required fields are checked locally before anything
// touches the network, and the transition itself goes through the gateway's
// conditional update so racing decisions fail explicitly instead of
// overwriting each other.
package decision

import (
	"context"
	"time"

	"vyapara-admin/internal/common/config"
	apperrors "vyapara-admin/internal/common/errors"
	"vyapara-admin/internal/common/logger"
	"vyapara-admin/internal/common/metrics"
	"vyapara-admin/internal/gateway"
	"vyapara-admin/internal/models"
)

// Action identifies one of the three admin decisions.
type Action string

const (
	ActionApprove        Action = "approve"
	ActionReject         Action = "reject"
	ActionRequestChanges Action = "request-changes"
)

// Request is a decision submission for one application. ExpectedStatus is
// the status the reviewer last read; the update only applies while it still
// holds.
type Request struct {
	Action         Action `json:"action"`
	Reason         string `json:"reason,omitempty"`
	Notes          string `json:"notes,omitempty"`
	ExpectedStatus string `json:"expectedStatus"`
}

// applicationStore is the slice of the gateway the workflow needs.
type applicationStore interface {
	GetByID(ctx context.Context, id string) (*models.ApplicationDetail, error)
	UpdateStatus(ctx context.Context, id, expectedStatus string, upd gateway.StatusUpdate) (*models.Application, error)
}

// Service runs the decision workflow.
type Service struct {
	store       applicationStore
	guard       *Guard
	notifier    *Notifier
	reasonCodes map[string]bool
	logger      logger.Logger
	now         func() time.Time
}

// NewService creates the decision workflow service. The notifier may be nil
// when notifications are disabled.
func NewService(store applicationStore, guard *Guard, notifier *Notifier, cfg config.ReviewConfig, log logger.Logger) *Service {
	codes := make(map[string]bool, len(cfg.ReasonCodes))
	for _, c := range cfg.ReasonCodes {
		codes[c] = true
	}
	return &Service{
		store:       store,
		guard:       guard,
		notifier:    notifier,
		reasonCodes: codes,
		logger:      log.WithFields(map[string]interface{}{"component": "decision"}),
		now:         time.Now,
	}
}

// Submit validates and applies one decision. Validation failures are
// reported before any network call; a concurrent in-flight decision for the
// same application is refused.
func (s *Service) Submit(ctx context.Context, applicationID string, req Request) (*models.Application, error) {
	if applicationID == "" {
		return nil, apperrors.NewValidationError("applicationId", "application id is required")
	}
	if err := s.validate(req); err != nil {
		metrics.DecisionsTotal.WithLabelValues(string(req.Action), "validation_failed").Inc()
		return nil, err
	}

	release, ok := s.guard.Acquire(ctx, applicationID)
	if !ok {
		metrics.DecisionsTotal.WithLabelValues(string(req.Action), "in_flight").Inc()
		return nil, apperrors.NewStatusConflictError(applicationID, req.ExpectedStatus)
	}
	defer release()

	upd := s.buildUpdate(req)
	updated, err := s.store.UpdateStatus(ctx, applicationID, req.ExpectedStatus, upd)
	if err != nil {
		metrics.DecisionsTotal.WithLabelValues(string(req.Action), "failed").Inc()
		return nil, err
	}

	metrics.DecisionsTotal.WithLabelValues(string(req.Action), "applied").Inc()
	s.logger.Info("decision applied", map[string]interface{}{
		"applicationId": applicationID,
		"action":        string(req.Action),
		"status":        upd.Status,
	})

	s.notify(ctx, applicationID, req)
	return updated, nil
}

// validate checks the per-action required fields. Nothing leaves the process
// until this passes.
func (s *Service) validate(req Request) error {
	switch req.Action {
	case ActionApprove:
		// No extra input.
	case ActionReject:
		if req.Reason == "" {
			return apperrors.NewValidationError("reason", "a rejection reason is required")
		}
		if !s.reasonCodes[req.Reason] {
			return apperrors.NewValidationError("reason", "reason must be one of the documented reason codes")
		}
	case ActionRequestChanges:
		if req.Notes == "" {
			return apperrors.NewValidationError("notes", "feedback notes are required when requesting changes")
		}
	default:
		return apperrors.NewValidationError("action", "action must be approve, reject, or request-changes")
	}

	if req.ExpectedStatus == "" {
		return apperrors.NewValidationError("expectedStatus", "the last-read status is required")
	}
	return nil
}

// buildUpdate maps the action onto the field set written by the transition.
// Every transition stamps updated_at.
func (s *Service) buildUpdate(req Request) gateway.StatusUpdate {
	now := s.now().UTC()
	upd := gateway.StatusUpdate{UpdatedAt: now}

	switch req.Action {
	case ActionApprove:
		upd.Status = string(models.StatusApproved)
		upd.ApprovedAt = &now
		upd.CurrentStep = string(models.StatusApproved)
	case ActionReject:
		upd.Status = string(models.StatusRejected)
		upd.RejectedAt = &now
		upd.RejectionReason = req.Reason
		upd.Notes = req.Notes
		upd.CurrentStep = string(models.StatusRejected)
	case ActionRequestChanges:
		upd.Status = string(models.StatusRevisionRequired)
		upd.Notes = req.Notes
		upd.CurrentStep = string(models.StatusRevisionRequired)
	}
	return upd
}

// notify tells the applicant about the decision. Failures are logged and
// never fail the submission.
func (s *Service) notify(ctx context.Context, applicationID string, req Request) {
	if s.notifier == nil {
		return
	}

	detail, err := s.store.GetByID(ctx, applicationID)
	if err != nil {
		s.logger.WithError(err).Warn("skipping decision notification", map[string]interface{}{
			"applicationId": applicationID,
		})
		return
	}
	s.notifier.SendDecision(ctx, detail, req.Action, req.Reason, req.Notes)
}
