package gateway

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vyapara-admin/internal/common/config"
	apperrors "vyapara-admin/internal/common/errors"
	"vyapara-admin/internal/common/logger"
)

// ==========================
// 1. TEST FIXTURES
// ==========================

var listTestColumns = []string{
	"id", "application_number", "applicant_id", "business_id", "status",
	"current_step", "rejection_reason", "notes",
	"created_at", "updated_at", "submitted_at", "approved_at", "rejected_at",
	"business_name", "business_type", "proposed_trade_name", "applicant_name",
}

func newTestGateway(t *testing.T) (*Gateway, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gw := New(db, config.ReviewConfig{QueryTimeout: 5000}, logger.NewNoOpLogger())
	return gw, mock
}

func listRow(id, status string) *sqlmock.Rows {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(listTestColumns).AddRow(
		id, "BRN-2025-0001", "user-1", "biz-1", status,
		"document_review", "", "",
		now, now, &now, nil, nil,
		"Acme Trading", "sole_proprietorship", "Acme", "Nimal Perera",
	)
}

// ==========================
// 2. LIST
// ==========================

func TestListReturnsPageAndTotal(t *testing.T) {
	gw, mock := newTestGateway(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM business_applications`).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	mock.ExpectQuery(`SELECT a\.id, .+ FROM business_applications .+ WHERE a\.status = \$1 ORDER BY a\.created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("pending", 2, 0).
		WillReturnRows(listRow("app-1", "pending").AddRow(
			"app-2", "BRN-2025-0002", "user-2", "biz-2", "pending",
			"", "", "",
			time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
			nil, nil, nil,
			"Beta Stores", "partnership", "", "Kamala Silva",
		))

	result, err := gw.List(context.Background(), Filter{Status: "pending", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalCount)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "app-1", result.Records[0].ID)
	assert.Equal(t, "Acme Trading", result.Records[0].BusinessName)
	assert.Nil(t, result.Records[1].SubmittedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSearchMatchesNumberAndNames(t *testing.T) {
	gw, mock := newTestGateway(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("%acme%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`a\.application_number ILIKE \$1 OR b\.business_name ILIKE \$1 OR b\.proposed_trade_name ILIKE \$1`).
		WithArgs("%acme%").
		WillReturnRows(listRow("app-1", "pending"))

	result, err := gw.List(context.Background(), Filter{}.WithSearch("acme"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByIDs(t *testing.T) {
	gw, mock := newTestGateway(t)
	ids := []string{"app-1", "app-2"}

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(pq.Array(ids)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`a\.id = ANY\(\$1\)`).
		WithArgs(pq.Array(ids)).
		WillReturnRows(listRow("app-1", "pending"))

	result, err := gw.List(context.Background(), Filter{}.WithIDs(ids))
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEmptyResultIsNotAnError(t *testing.T) {
	gw, mock := newTestGateway(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT a\.id`).
		WillReturnRows(sqlmock.NewRows(listTestColumns))

	result, err := gw.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalCount)
	assert.NotNil(t, result.Records)
	assert.Empty(t, result.Records)
}

func TestListPermissionDenied(t *testing.T) {
	gw, mock := newTestGateway(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WillReturnError(&pq.Error{Code: "42501", Message: "permission denied for table business_applications"})

	_, err := gw.List(context.Background(), Filter{})
	require.Error(t, err)
	assert.True(t, apperrors.IsPermissionDenied(err))
}

func TestListTransportFailure(t *testing.T) {
	gw, mock := newTestGateway(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WillReturnError(sql.ErrConnDone)

	_, err := gw.List(context.Background(), Filter{})
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
	assert.True(t, apperrors.IsRetryable(err))
}

// ==========================
// 3. GET BY ID
// ==========================

func detailColumns() []string {
	return []string{
		"id", "application_number", "applicant_id", "business_id", "status",
		"current_step", "rejection_reason", "notes",
		"created_at", "updated_at", "submitted_at", "approved_at", "rejected_at",
		"b_id", "business_name", "business_type",
		"proposed_trade_name", "nature_of_business", "business_address",
		"bt_id", "bt_type", "bt_display_name",
		"bt_description", "bt_processing_days", "bt_base_fee",
		"u_id", "full_name", "email", "phone",
		"nic", "address", "profile_image_url",
		"is_email_verified", "is_phone_verified", "is_nic_verified",
	}
}

func TestGetByIDAssemblesDetail(t *testing.T) {
	gw, mock := newTestGateway(t)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`LEFT JOIN business_types bt`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(detailColumns()).AddRow(
			"app-1", "BRN-2025-0001", "user-1", "biz-1", "under_review",
			"document_review", "", "",
			now, now, &now, nil, nil,
			"biz-1", "Acme Trading", "sole_proprietorship",
			"Acme", "Retail", "12 Main St, Colombo",
			"bt-1", "sole_proprietorship", "Sole Proprietorship",
			"", 5, 1500.0,
			"user-1", "Nimal Perera", "nimal@example.com", "+94771234567",
			"911234567V", "", "",
			true, true, false,
		))

	mock.ExpectQuery(`FROM application_steps s`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "step_name", "step_order", "is_completed", "completed_at",
			"notes", "assigned_to", "assignee_name",
		}).
			AddRow("step-1", "Document Review", 1, true, &now, "", "rev-1", "Saman Fernando").
			AddRow("step-2", "Compliance Check", 2, false, nil, "", "rev-2", "Ruwan Jayasuriya"))

	mock.ExpectQuery(`FROM business_documents d`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "application_id", "document_name", "document_type", "status",
			"current_version", "review_notes", "reviewed_by", "reviewed_at", "created_at",
		}).AddRow("doc-1", "app-1", "Business Plan", "plan", "approved", 2, "", "", nil, now))

	mock.ExpectQuery(`FROM document_versions v`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"document_id", "id", "version_number", "file_path", "file_name",
			"file_size", "mime_type", "uploaded_at",
		}).
			AddRow("doc-1", "ver-1", 1, "user-1/business_plan.pdf", "business_plan.pdf", 1024, "application/pdf", now).
			AddRow("doc-1", "ver-2", 2, "user-1/business_plan_v2.pdf", "business_plan_v2.pdf", 2048, "application/pdf", now))

	mock.ExpectQuery(`FROM payments p`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "amount", "currency", "status", "payment_reference", "paid_at",
		}).AddRow("pay-1", 1500.0, "LKR", "completed", "PAY-001", &now))

	mock.ExpectQuery(`FROM appointments ap`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "appointment_type", "title", "description",
			"appointment_date", "start_time", "end_time",
			"status", "location", "meeting_link",
		}))

	detail, err := gw.GetByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "app-1", detail.ID)
	require.NotNil(t, detail.Business)
	assert.Equal(t, "Acme Trading", detail.Business.BusinessName)
	require.NotNil(t, detail.Business.TypeMeta)
	assert.Equal(t, 5, detail.Business.TypeMeta.EstimatedProcessingDays)
	require.NotNil(t, detail.Applicant)
	assert.Equal(t, "Nimal Perera", detail.Applicant.FullName)
	require.Len(t, detail.Steps, 2)
	assert.Equal(t, "Saman Fernando", detail.Steps[0].AssigneeName)
	require.Len(t, detail.Documents, 1)
	assert.Len(t, detail.Documents[0].Versions, 2)
	require.Len(t, detail.Payments, 1)
	assert.Empty(t, detail.Appointments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	gw, mock := newTestGateway(t)

	mock.ExpectQuery(`LEFT JOIN business_types bt`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(detailColumns()))

	_, err := gw.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

// ==========================
// 4. CONDITIONAL UPDATE
// ==========================

func TestUpdateStatusSuccess(t *testing.T) {
	gw, mock := newTestGateway(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE business_applications SET status = \$1, updated_at = \$2, current_step = \$3, approved_at = \$4 WHERE id = \$5 AND status = \$6`).
		WithArgs("approved", now, "approved", now, "app-1", "under_review").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`WHERE a\.id = \$1`).
		WithArgs("app-1").
		WillReturnRows(listRow("app-1", "approved"))

	app, err := gw.UpdateStatus(context.Background(), "app-1", "under_review", StatusUpdate{
		Status:      "approved",
		CurrentStep: "approved",
		ApprovedAt:  &now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	assert.Equal(t, "approved", app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusConflict(t *testing.T) {
	gw, mock := newTestGateway(t)

	mock.ExpectExec(`UPDATE business_applications`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM business_applications WHERE id = \$1`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("approved"))

	_, err := gw.UpdateStatus(context.Background(), "app-1", "under_review", StatusUpdate{
		Status:    "rejected",
		UpdatedAt: time.Now().UTC(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsStatusConflict(err))
}

func TestUpdateStatusMissingRow(t *testing.T) {
	gw, mock := newTestGateway(t)

	mock.ExpectExec(`UPDATE business_applications`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM business_applications WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	_, err := gw.UpdateStatus(context.Background(), "missing", "under_review", StatusUpdate{
		Status:    "approved",
		UpdatedAt: time.Now().UTC(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateStatusSkipsUnsetColumns(t *testing.T) {
	gw, mock := newTestGateway(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE business_applications SET status = \$1, updated_at = \$2, current_step = \$3, notes = \$4 WHERE id = \$5 AND status = \$6`).
		WithArgs("revision_required", now, "revision_required", "Resubmit page 2", "app-1", "under_review").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`WHERE a\.id = \$1`).
		WithArgs("app-1").
		WillReturnRows(listRow("app-1", "revision_required"))

	_, err := gw.UpdateStatus(context.Background(), "app-1", "under_review", StatusUpdate{
		Status:      "revision_required",
		CurrentStep: "revision_required",
		Notes:       "Resubmit page 2",
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// 5. STATS FETCH
// ==========================

func TestListCreatedSince(t *testing.T) {
	gw, mock := newTestGateway(t)
	since := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE a\.created_at >= \$1`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "status", "created_at", "submitted_at", "approved_at", "rejected_at", "business_type",
		}).
			AddRow("app-1", "approved", created, &created, &created, nil, "partnership").
			AddRow("app-2", "pending", created, nil, nil, nil, ""))

	records, err := gw.ListCreatedSince(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "partnership", records[0].BusinessType)
	assert.Nil(t, records[1].SubmittedAt)
}
