// Package gateway builds filtered, sorted read and conditional update
// requests against the application store and maps failures onto the shared
// error taxonomy. Nothing here is thrown; every failure is a tagged result.
package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"vyapara-admin/internal/common/config"
	apperrors "vyapara-admin/internal/common/errors"
	"vyapara-admin/internal/common/logger"
	"vyapara-admin/internal/common/metrics"
	"vyapara-admin/internal/models"
)

// ListResult is a page of applications plus the exact total match count.
type ListResult struct {
	Records    []models.Application `json:"records"`
	TotalCount int                  `json:"totalCount"`
}

// StatusUpdate is the field set applied by a decision transition. Status and
// UpdatedAt are always written; the rest only when set.
type StatusUpdate struct {
	Status          string
	CurrentStep     string
	RejectionReason string
	Notes           string
	ApprovedAt      *time.Time
	RejectedAt      *time.Time
	UpdatedAt       time.Time
}

// Gateway is the persistence boundary for application reads and updates.
type Gateway struct {
	db      *sql.DB
	timeout time.Duration
	logger  logger.Logger
}

// New creates a Gateway over the given database handle.
func New(db *sql.DB, cfg config.ReviewConfig, log logger.Logger) *Gateway {
	return &Gateway{
		db:      db,
		timeout: config.GetDuration(cfg.QueryTimeout),
		logger:  log.WithFields(map[string]interface{}{"component": "gateway"}),
	}
}

const listColumns = `a.id, a.application_number, a.applicant_id, a.business_id, a.status,
	COALESCE(a.current_step, ''), COALESCE(a.rejection_reason, ''), COALESCE(a.notes, ''),
	a.created_at, a.updated_at, a.submitted_at, a.approved_at, a.rejected_at,
	COALESCE(b.business_name, ''), COALESCE(b.business_type, ''), COALESCE(b.proposed_trade_name, ''),
	COALESCE(u.full_name, '')`

const listJoins = ` FROM business_applications a
	LEFT JOIN businesses b ON b.id = a.business_id
	LEFT JOIN user_profiles u ON u.id = a.applicant_id`

// List returns the applications matching the filter plus an exact total
// count taken with the same criteria.
func (g *Gateway) List(ctx context.Context, f Filter) (*ListResult, error) {
	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues("list").Observe(time.Since(start).Seconds())
	}()
	metrics.QueriesTotal.WithLabelValues("list").Inc()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	where, args := f.whereClause()

	var total int
	countQuery := "SELECT COUNT(*)" + listJoins + where
	if err := g.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, g.fail("list", "count applications", err)
	}

	page, args := f.pageClause(args)
	query := "SELECT " + listColumns + listJoins + where + f.orderClause() + page

	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, g.fail("list", "query applications", err)
	}
	defer rows.Close()

	records := make([]models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, g.fail("list", "scan application", err)
		}
		records = append(records, app)
	}
	if err := rows.Err(); err != nil {
		return nil, g.fail("list", "iterate applications", err)
	}

	return &ListResult{Records: records, TotalCount: total}, nil
}

// GetByID returns the fully joined record for one application. A missing row
// is a NotFound error, distinct from transport failures.
func (g *Gateway) GetByID(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues("detail").Observe(time.Since(start).Seconds())
	}()
	metrics.QueriesTotal.WithLabelValues("detail").Inc()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	detail, err := g.fetchDetailRow(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			metrics.QueriesFailed.WithLabelValues("detail", string(apperrors.ErrCodeNotFound)).Inc()
			return nil, apperrors.NewNotFoundError("application", id)
		}
		return nil, g.fail("detail", "query application", err)
	}

	if detail.Steps, err = g.fetchSteps(ctx, id); err != nil {
		return nil, g.fail("detail", "query steps", err)
	}
	if detail.Documents, err = g.fetchDocuments(ctx, id); err != nil {
		return nil, g.fail("detail", "query documents", err)
	}
	if detail.Payments, err = g.fetchPayments(ctx, id); err != nil {
		return nil, g.fail("detail", "query payments", err)
	}
	if detail.Appointments, err = g.fetchAppointments(ctx, id); err != nil {
		return nil, g.fail("detail", "query appointments", err)
	}

	return detail, nil
}

// UpdateStatus applies a decision transition conditionally: the row is only
// written when its current status still matches expectedStatus. A matched id
// with a changed status is a status-conflict error, so two racing decisions
// cannot silently overwrite each other.
func (g *Gateway) UpdateStatus(ctx context.Context, id, expectedStatus string, upd StatusUpdate) (*models.Application, error) {
	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues("update").Observe(time.Since(start).Seconds())
	}()
	metrics.QueriesTotal.WithLabelValues("update").Inc()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var set []string
	var args []interface{}
	add := func(col string, val interface{}) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	add("status", upd.Status)
	add("updated_at", upd.UpdatedAt)
	if upd.CurrentStep != "" {
		add("current_step", upd.CurrentStep)
	}
	if upd.RejectionReason != "" {
		add("rejection_reason", upd.RejectionReason)
	}
	if upd.Notes != "" {
		add("notes", upd.Notes)
	}
	if upd.ApprovedAt != nil {
		add("approved_at", *upd.ApprovedAt)
	}
	if upd.RejectedAt != nil {
		add("rejected_at", *upd.RejectedAt)
	}

	args = append(args, id)
	idPos := len(args)
	args = append(args, expectedStatus)
	query := fmt.Sprintf("UPDATE business_applications SET %s WHERE id = $%d AND status = $%d",
		strings.Join(set, ", "), idPos, idPos+1)

	res, err := g.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, g.fail("update", "update application", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, g.fail("update", "update application", err)
	}
	if affected == 0 {
		var current string
		err := g.db.QueryRowContext(ctx,
			"SELECT status FROM business_applications WHERE id = $1", id).Scan(&current)
		if err == sql.ErrNoRows {
			metrics.QueriesFailed.WithLabelValues("update", string(apperrors.ErrCodeNotFound)).Inc()
			return nil, apperrors.NewNotFoundError("application", id)
		}
		if err != nil {
			return nil, g.fail("update", "verify application", err)
		}
		metrics.QueriesFailed.WithLabelValues("update", string(apperrors.ErrCodeStatusConflict)).Inc()
		g.logger.Warn("conditional update lost", map[string]interface{}{
			"applicationId":  id,
			"expectedStatus": expectedStatus,
			"currentStatus":  current,
		})
		return nil, apperrors.NewStatusConflictError(id, expectedStatus)
	}

	return g.fetchSummary(ctx, id)
}

// ListCreatedSince returns lightweight records created at or after the given
// instant, joined to their business type. The statistics service feeds the
// aggregation engine with this set.
func (g *Gateway) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Application, error) {
	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues("stats_fetch").Observe(time.Since(start).Seconds())
	}()
	metrics.QueriesTotal.WithLabelValues("stats_fetch").Inc()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	query := `SELECT a.id, a.status, a.created_at, a.submitted_at, a.approved_at, a.rejected_at,
		COALESCE(b.business_type, '')
	FROM business_applications a
	LEFT JOIN businesses b ON b.id = a.business_id
	WHERE a.created_at >= $1`

	rows, err := g.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, g.fail("stats_fetch", "query applications", err)
	}
	defer rows.Close()

	var records []models.Application
	for rows.Next() {
		var app models.Application
		if err := rows.Scan(&app.ID, &app.Status, &app.CreatedAt,
			&app.SubmittedAt, &app.ApprovedAt, &app.RejectedAt, &app.BusinessType); err != nil {
			return nil, g.fail("stats_fetch", "scan application", err)
		}
		records = append(records, app)
	}
	if err := rows.Err(); err != nil {
		return nil, g.fail("stats_fetch", "iterate applications", err)
	}

	return records, nil
}

// ListStepsFor returns the review steps for a batch of applications keyed by
// application id. The CSV export resolves assignees from this map without a
// query per row.
func (g *Gateway) ListStepsFor(ctx context.Context, ids []string) (map[string][]models.ApplicationStep, error) {
	byApp := make(map[string][]models.ApplicationStep, len(ids))
	if len(ids) == 0 {
		return byApp, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	query := `SELECT s.application_id, s.id, s.step_name, s.step_order, s.is_completed, s.completed_at,
		COALESCE(s.notes, ''), COALESCE(s.assigned_to, ''), COALESCE(u.full_name, '')
	FROM application_steps s
	LEFT JOIN user_profiles u ON u.id = s.assigned_to
	WHERE s.application_id = ANY($1)
	ORDER BY s.application_id, s.step_order`

	rows, err := g.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, g.fail("steps", "query steps", err)
	}
	defer rows.Close()

	for rows.Next() {
		var appID string
		var s models.ApplicationStep
		if err := rows.Scan(&appID, &s.ID, &s.StepName, &s.StepOrder, &s.IsCompleted, &s.CompletedAt,
			&s.Notes, &s.AssignedTo, &s.AssigneeName); err != nil {
			return nil, g.fail("steps", "scan step", err)
		}
		byApp[appID] = append(byApp[appID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, g.fail("steps", "iterate steps", err)
	}
	return byApp, nil
}

// fetchSummary re-reads one joined list row after an update.
func (g *Gateway) fetchSummary(ctx context.Context, id string) (*models.Application, error) {
	query := "SELECT " + listColumns + listJoins + " WHERE a.id = $1"
	row := g.db.QueryRowContext(ctx, query, id)
	app, err := scanApplication(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("application", id)
		}
		return nil, g.fail("update", "reread application", err)
	}
	return &app, nil
}

func (g *Gateway) fetchDetailRow(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	query := `SELECT a.id, a.application_number, a.applicant_id, a.business_id, a.status,
		COALESCE(a.current_step, ''), COALESCE(a.rejection_reason, ''), COALESCE(a.notes, ''),
		a.created_at, a.updated_at, a.submitted_at, a.approved_at, a.rejected_at,
		COALESCE(b.id, ''), COALESCE(b.business_name, ''), COALESCE(b.business_type, ''),
		COALESCE(b.proposed_trade_name, ''), COALESCE(b.nature_of_business, ''), COALESCE(b.business_address, ''),
		COALESCE(bt.id, ''), COALESCE(bt.type, ''), COALESCE(bt.display_name, ''),
		COALESCE(bt.description, ''), COALESCE(bt.estimated_processing_days, 0), COALESCE(bt.base_fee, 0),
		COALESCE(u.id, ''), COALESCE(u.full_name, ''), COALESCE(u.email, ''), COALESCE(u.phone, ''),
		COALESCE(u.nic, ''), COALESCE(u.address, ''), COALESCE(u.profile_image_url, ''),
		COALESCE(u.is_email_verified, false), COALESCE(u.is_phone_verified, false), COALESCE(u.is_nic_verified, false)
	FROM business_applications a
	LEFT JOIN businesses b ON b.id = a.business_id
	LEFT JOIN business_types bt ON bt.id = b.business_type_id
	LEFT JOIN user_profiles u ON u.id = a.applicant_id
	WHERE a.id = $1`

	var detail models.ApplicationDetail
	var biz models.Business
	var typeMeta models.BusinessType
	var applicant models.UserProfile

	err := g.db.QueryRowContext(ctx, query, id).Scan(
		&detail.ID, &detail.ApplicationNumber, &detail.ApplicantID, &detail.BusinessID, &detail.Status,
		&detail.CurrentStep, &detail.RejectionReason, &detail.Notes,
		&detail.CreatedAt, &detail.UpdatedAt, &detail.SubmittedAt, &detail.ApprovedAt, &detail.RejectedAt,
		&biz.ID, &biz.BusinessName, &biz.BusinessType,
		&biz.ProposedTradeName, &biz.NatureOfBusiness, &biz.BusinessAddress,
		&typeMeta.ID, &typeMeta.Type, &typeMeta.DisplayName,
		&typeMeta.Description, &typeMeta.EstimatedProcessingDays, &typeMeta.BaseFee,
		&applicant.ID, &applicant.FullName, &applicant.Email, &applicant.Phone,
		&applicant.NIC, &applicant.Address, &applicant.ProfileImageURL,
		&applicant.IsEmailVerified, &applicant.IsPhoneVerified, &applicant.IsNICVerified,
	)
	if err != nil {
		return nil, err
	}

	if biz.ID != "" {
		if typeMeta.ID != "" {
			biz.TypeMeta = &typeMeta
		}
		detail.Business = &biz
		detail.BusinessName = biz.BusinessName
		detail.BusinessType = biz.BusinessType
		detail.ProposedTradeName = biz.ProposedTradeName
	}
	if applicant.ID != "" {
		detail.Applicant = &applicant
		detail.ApplicantName = applicant.FullName
	}
	return &detail, nil
}

func (g *Gateway) fetchSteps(ctx context.Context, id string) ([]models.ApplicationStep, error) {
	query := `SELECT s.id, s.step_name, s.step_order, s.is_completed, s.completed_at,
		COALESCE(s.notes, ''), COALESCE(s.assigned_to, ''), COALESCE(u.full_name, '')
	FROM application_steps s
	LEFT JOIN user_profiles u ON u.id = s.assigned_to
	WHERE s.application_id = $1
	ORDER BY s.step_order`

	rows, err := g.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	steps := make([]models.ApplicationStep, 0)
	for rows.Next() {
		var s models.ApplicationStep
		if err := rows.Scan(&s.ID, &s.StepName, &s.StepOrder, &s.IsCompleted, &s.CompletedAt,
			&s.Notes, &s.AssignedTo, &s.AssigneeName); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

func (g *Gateway) fetchDocuments(ctx context.Context, id string) ([]models.Document, error) {
	query := `SELECT d.id, d.application_id, d.document_name, d.document_type, d.status,
		COALESCE(d.current_version, 0), COALESCE(d.review_notes, ''), COALESCE(d.reviewed_by, ''),
		d.reviewed_at, d.created_at
	FROM business_documents d
	WHERE d.application_id = $1
	ORDER BY d.created_at`

	rows, err := g.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]models.Document, 0)
	index := make(map[string]int)
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.ApplicationID, &d.DocumentName, &d.DocumentType, &d.Status,
			&d.CurrentVersion, &d.ReviewNotes, &d.ReviewedBy, &d.ReviewedAt, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Versions = make([]models.DocumentVersion, 0)
		index[d.ID] = len(docs)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	vquery := `SELECT v.document_id, v.id, v.version_number, v.file_path, v.file_name,
		COALESCE(v.file_size, 0), COALESCE(v.mime_type, ''), v.uploaded_at
	FROM document_versions v
	JOIN business_documents d ON d.id = v.document_id
	WHERE d.application_id = $1
	ORDER BY v.version_number`

	vrows, err := g.db.QueryContext(ctx, vquery, id)
	if err != nil {
		return nil, err
	}
	defer vrows.Close()

	for vrows.Next() {
		var docID string
		var v models.DocumentVersion
		if err := vrows.Scan(&docID, &v.ID, &v.VersionNumber, &v.FilePath, &v.FileName,
			&v.FileSize, &v.MimeType, &v.UploadedAt); err != nil {
			return nil, err
		}
		if i, ok := index[docID]; ok {
			docs[i].Versions = append(docs[i].Versions, v)
		}
	}
	return docs, vrows.Err()
}

func (g *Gateway) fetchPayments(ctx context.Context, id string) ([]models.Payment, error) {
	query := `SELECT p.id, p.amount, COALESCE(p.currency, ''), p.status,
		COALESCE(p.payment_reference, ''), p.paid_at
	FROM payments p
	WHERE p.application_id = $1
	ORDER BY p.created_at`

	rows, err := g.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]models.Payment, 0)
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.Amount, &p.Currency, &p.Status,
			&p.PaymentReference, &p.PaidAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (g *Gateway) fetchAppointments(ctx context.Context, id string) ([]models.Appointment, error) {
	query := `SELECT ap.id, ap.appointment_type, ap.title, COALESCE(ap.description, ''),
		ap.appointment_date, COALESCE(ap.start_time, ''), COALESCE(ap.end_time, ''),
		ap.status, COALESCE(ap.location, ''), COALESCE(ap.meeting_link, '')
	FROM appointments ap
	WHERE ap.application_id = $1
	ORDER BY ap.appointment_date`

	rows, err := g.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appts := make([]models.Appointment, 0)
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.AppointmentType, &a.Title, &a.Description,
			&a.AppointmentDate, &a.StartTime, &a.EndTime,
			&a.Status, &a.Location, &a.MeetingLink); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

// fail classifies a database error, records it, and wraps it in the shared
// taxonomy. Postgres permission denials map to PERMISSION_DENIED; everything
// else is a transport failure.
func (g *Gateway) fail(operation, action string, err error) error {
	var wrapped *apperrors.StandardError
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "42501" {
		wrapped = apperrors.NewPermissionDeniedError(pqErr.Message)
	} else {
		wrapped = apperrors.NewTransportError(action, err)
	}
	metrics.QueriesFailed.WithLabelValues(operation, string(wrapped.Code)).Inc()
	g.logger.WithError(err).Error(action+" failed", map[string]interface{}{
		"operation": operation,
	})
	return wrapped
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (models.Application, error) {
	var app models.Application
	err := row.Scan(
		&app.ID, &app.ApplicationNumber, &app.ApplicantID, &app.BusinessID, &app.Status,
		&app.CurrentStep, &app.RejectionReason, &app.Notes,
		&app.CreatedAt, &app.UpdatedAt, &app.SubmittedAt, &app.ApprovedAt, &app.RejectedAt,
		&app.BusinessName, &app.BusinessType, &app.ProposedTradeName,
		&app.ApplicantName,
	)
	return app, err
}
