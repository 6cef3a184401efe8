// Package docs resolves time-limited retrieval URLs for stored documents and
// builds the merged document view for an application.
package docs

import (
	"context"
	"sync"
	"time"

	"vyapara-admin/internal/common/config"
	apperrors "vyapara-admin/internal/common/errors"
	"vyapara-admin/internal/common/logger"
	"vyapara-admin/internal/common/metrics"
	"vyapara-admin/internal/common/storage"
	"vyapara-admin/internal/models"
	"vyapara-admin/internal/view"
)

// objectStore is the slice of the storage client the service uses.
type objectStore interface {
	List(ctx context.Context, prefix string) ([]storage.Object, error)
	PresignGet(ctx context.Context, objectKey string, expirySeconds int64) (string, error)
}

// SignedURL pairs a storage path with its resolved URL.
type SignedURL struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Service issues signed URLs against the document bucket.
type Service struct {
	store         objectStore
	defaultExpiry int64
	logger        logger.Logger
}

// NewService creates a document service with the configured default expiry.
func NewService(store objectStore, cfg config.ReviewConfig, log logger.Logger) *Service {
	return &Service{
		store:         store,
		defaultExpiry: int64(cfg.SignedURLExpiry),
		logger:        log.WithFields(map[string]interface{}{"component": "docs"}),
	}
}

// SignedURL returns a time-limited retrieval URL for one storage path.
// An expiry of zero or less uses the configured default.
func (s *Service) SignedURL(ctx context.Context, path string, expiresIn int64) (string, error) {
	if path == "" {
		return "", apperrors.NewValidationError("path", "a storage path is required")
	}
	if expiresIn <= 0 {
		expiresIn = s.defaultExpiry
	}

	url, err := s.store.PresignGet(ctx, path, expiresIn)
	if err != nil {
		return "", apperrors.NewTransportError("sign document url", err)
	}
	metrics.SignedURLsIssued.Inc()
	return url, nil
}

// SignedURLs resolves a batch of storage paths concurrently. Partial
// failures are tolerated: the successes come back in path order, and an
// error is reported only when every path failed.
func (s *Service) SignedURLs(ctx context.Context, paths []string, expiresIn int64) ([]SignedURL, error) {
	if len(paths) == 0 {
		return []SignedURL{}, nil
	}

	urls := make([]string, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			urls[i], errs[i] = s.SignedURL(ctx, path, expiresIn)
		}(i, path)
	}
	wg.Wait()

	out := make([]SignedURL, 0, len(paths))
	var firstErr error
	for i, path := range paths {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			s.logger.WithError(errs[i]).Warn("signed url failed", map[string]interface{}{
				"path": path,
			})
			continue
		}
		out = append(out, SignedURL{Path: path, URL: urls[i]})
	}

	if len(out) == 0 {
		return nil, firstErr
	}
	return out, nil
}

// MergedDocuments reconciles the application's document rows with the
// applicant's storage folder. A failed listing degrades to the table rows
// alone rather than failing the view.
func (s *Service) MergedDocuments(ctx context.Context, detail *models.ApplicationDetail, now time.Time) []view.DocumentEntry {
	var objects []storage.Object
	if detail.ApplicantID != "" {
		listed, err := s.store.List(ctx, detail.ApplicantID+"/")
		if err != nil {
			s.logger.WithError(err).Warn("storage listing failed, using table rows only", map[string]interface{}{
				"applicationId": detail.ID,
			})
		} else {
			objects = listed
		}
	}
	return view.MergeDocuments(detail.Documents, objects, detail.ApplicantID, now)
}
