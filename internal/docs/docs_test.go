// internal/docs/docs_test.go
package docs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vyapara-admin/internal/common/config"
	apperrors "vyapara-admin/internal/common/errors"
	"vyapara-admin/internal/common/logger"
	"vyapara-admin/internal/common/storage"
	"vyapara-admin/internal/models"
)

// ==========================
// Test Helpers
// ==========================

type fakeStore struct {
	objects    []storage.Object
	listErr    error
	failPaths  map[string]bool
	lastExpiry int64
}

func (f *fakeStore) List(_ context.Context, _ string) ([]storage.Object, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.objects, nil
}

func (f *fakeStore) PresignGet(_ context.Context, key string, expiry int64) (string, error) {
	f.lastExpiry = expiry
	if f.failPaths[key] {
		return "", errors.New("presign failed")
	}
	return fmt.Sprintf("https://store.local/%s?exp=%d", key, expiry), nil
}

func newTestService(store *fakeStore) *Service {
	cfg := config.ReviewConfig{SignedURLExpiry: 3600}
	return NewService(store, cfg, logger.NewNoOpLogger())
}

// ==========================
// 1. Single URL
// ==========================

func TestSignedURL(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	url, err := svc.SignedURL(context.Background(), "user-7/plan.pdf", 600)
	require.NoError(t, err)
	assert.Equal(t, "https://store.local/user-7/plan.pdf?exp=600", url)
}

func TestSignedURLDefaultExpiry(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	_, err := svc.SignedURL(context.Background(), "user-7/plan.pdf", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), store.lastExpiry)
}

func TestSignedURLValidation(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.SignedURL(context.Background(), "", 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSignedURLTransportFailure(t *testing.T) {
	store := &fakeStore{failPaths: map[string]bool{"user-7/plan.pdf": true}}
	svc := newTestService(store)

	_, err := svc.SignedURL(context.Background(), "user-7/plan.pdf", 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

// ==========================
// 2. Batch URLs
// ==========================

func TestSignedURLsPartialFailure(t *testing.T) {
	store := &fakeStore{failPaths: map[string]bool{"user-7/b.pdf": true}}
	svc := newTestService(store)

	paths := []string{"user-7/a.pdf", "user-7/b.pdf", "user-7/c.pdf"}
	urls, err := svc.SignedURLs(context.Background(), paths, 0)

	// Partial failure still succeeds with the resolvable paths, in order.
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.Equal(t, "user-7/a.pdf", urls[0].Path)
	assert.Equal(t, "user-7/c.pdf", urls[1].Path)
}

func TestSignedURLsAllFail(t *testing.T) {
	store := &fakeStore{failPaths: map[string]bool{"user-7/a.pdf": true, "user-7/b.pdf": true}}
	svc := newTestService(store)

	urls, err := svc.SignedURLs(context.Background(), []string{"user-7/a.pdf", "user-7/b.pdf"}, 0)
	require.Error(t, err)
	assert.Nil(t, urls)
	assert.True(t, apperrors.IsTransport(err))
}

func TestSignedURLsEmptyBatch(t *testing.T) {
	svc := newTestService(&fakeStore{})

	urls, err := svc.SignedURLs(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

// ==========================
// 3. Merged View
// ==========================

func TestMergedDocuments(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{objects: []storage.Object{
		{Name: "business_plan_v2.pdf", LastModified: now.AddDate(0, 0, -1)},
		{Name: "unrelated.pdf", LastModified: now.AddDate(0, 0, -2)},
	}}
	svc := newTestService(store)

	detail := &models.ApplicationDetail{
		Application: models.Application{ID: "app-1", ApplicantID: "user-7"},
		Documents: []models.Document{
			{ID: "doc-1", DocumentName: "Business Plan", DocumentType: "Plan", Status: "pending", CreatedAt: now.AddDate(0, 0, -3)},
		},
	}

	entries := svc.MergedDocuments(context.Background(), detail, now)
	require.Len(t, entries, 2)
	assert.Equal(t, "user-7/business_plan_v2.pdf", entries[0].StoragePath)
	assert.Equal(t, "Pending", entries[1].Status)
}

func TestMergedDocumentsListingFailure(t *testing.T) {
	now := time.Now()
	store := &fakeStore{listErr: errors.New("bucket unreachable")}
	svc := newTestService(store)

	detail := &models.ApplicationDetail{
		Application: models.Application{ID: "app-1", ApplicantID: "user-7"},
		Documents: []models.Document{
			{ID: "doc-1", DocumentName: "Business Plan", Status: "pending", CreatedAt: now},
		},
	}

	// Listing failure degrades to the table rows.
	entries := svc.MergedDocuments(context.Background(), detail, now)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc-1", entries[0].ID)
	assert.Empty(t, entries[0].StoragePath)
}
