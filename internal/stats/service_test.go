package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vyapara-admin/internal/common/config"
	"vyapara-admin/internal/common/logger"
	"vyapara-admin/internal/models"
)

type fakeSource struct {
	lastSince time.Time
	records   []models.Application
	err       error
}

func (f *fakeSource) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Application, error) {
	f.lastSince = since
	return f.records, f.err
}

func newServiceAt(source *fakeSource, leadDays int, now time.Time) *Service {
	svc := NewService(source, config.ReviewConfig{SLADays: 5, TrendLeadDays: leadDays}, logger.NewNoOpLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func TestSnapshotFetchReachesPastShortWindows(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{}
	svc := newServiceAt(source, 60, now)

	_, err := svc.Snapshot(context.Background(), "7d")
	require.NoError(t, err)

	// the trend comparison periods need 60 days even for a 7 day window
	assert.Equal(t, now.AddDate(0, 0, -60), source.lastSince)
}

func TestSnapshotFetchUsesWindowWhenLonger(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{}
	svc := newServiceAt(source, 60, now)

	_, err := svc.Snapshot(context.Background(), "1y")
	require.NoError(t, err)

	assert.Equal(t, now.AddDate(0, 0, -365), source.lastSince)
}

func TestSnapshotPropagatesSourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("db down")}
	svc := newServiceAt(source, 60, time.Now())

	_, err := svc.Snapshot(context.Background(), "30d")
	assert.Error(t, err)
}

func TestSnapshotAggregatesFetchedRecords(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{records: []models.Application{
		{ID: "a", Status: "pending", CreatedAt: now.AddDate(0, 0, -2)},
		{ID: "b", Status: "approved", CreatedAt: now.AddDate(0, 0, -3)},
	}}
	svc := newServiceAt(source, 60, now)

	snap, err := svc.Snapshot(context.Background(), "30d")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Applications.Total)
	assert.Equal(t, 1, snap.Applications.Pending)
	assert.Equal(t, 1, snap.Applications.Approved)
}
