// internal/stats/service.go
package stats

import (
	"context"
	"time"

	"vyapara-admin/internal/common/config"
	"vyapara-admin/internal/common/logger"
	"vyapara-admin/internal/models"
)

// recordSource is the slice of the gateway the statistics service reads.
type recordSource interface {
	ListCreatedSince(ctx context.Context, since time.Time) ([]models.Application, error)
}

// Service fetches the record set for a requested range and aggregates it.
type Service struct {
	source   recordSource
	slaDays  int
	leadDays int
	logger   logger.Logger
	now      func() time.Time
}

// NewService creates a statistics service over the given record source.
func NewService(source recordSource, cfg config.ReviewConfig, log logger.Logger) *Service {
	return &Service{
		source:   source,
		slaDays:  cfg.SLADays,
		leadDays: cfg.TrendLeadDays,
		logger:   log.WithFields(map[string]interface{}{"component": "stats"}),
		now:      time.Now,
	}
}

// Snapshot computes the statistics snapshot for the trailing window named by
// rangeKey ("7d", "30d", "90d", "1y"). The fetch reaches back past the
// window start so the growth trends have their comparison periods.
func (s *Service) Snapshot(ctx context.Context, rangeKey string) (*models.StatisticsSnapshot, error) {
	now := s.now()

	fetchDays := WindowDays(rangeKey)
	if s.leadDays > fetchDays {
		fetchDays = s.leadDays
	}
	since := now.AddDate(0, 0, -fetchDays)

	records, err := s.source.ListCreatedSince(ctx, since)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("aggregating statistics", map[string]interface{}{
		"range":   rangeKey,
		"records": len(records),
	})

	snapshot := Aggregate(records, rangeKey, Params{SLADays: s.slaDays, Now: now})
	return &snapshot, nil
}
