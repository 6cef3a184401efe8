// internal/decision/guard.go
package decision

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vyapara-admin/internal/common/config"
	"vyapara-admin/internal/common/database"
	"vyapara-admin/internal/common/logger"
)

const guardKeyPrefix = "decision:inflight:"

// Guard is the advisory in-flight marker for decision submissions: one
// marker per application, set while a submission is running. It is not a
// lock; transition safety comes from the conditional status update. When
// Redis is unreachable the guard degrades to always allowing.
type Guard struct {
	client *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

// NewGuard creates a Guard with the configured marker TTL.
func NewGuard(client *database.RedisClient, cfg config.ReviewConfig, log logger.Logger) *Guard {
	return &Guard{
		client: client,
		ttl:    time.Duration(cfg.DecisionGuardTTL) * time.Second,
		logger: log.WithFields(map[string]interface{}{"component": "decision-guard"}),
	}
}

// Acquire tries to set the marker for the application. It returns false when
// another submission is already in flight, otherwise a release func that
// clears the marker.
func (g *Guard) Acquire(ctx context.Context, applicationID string) (func(), bool) {
	key := guardKeyPrefix + applicationID
	token := uuid.NewString()

	set, err := g.client.SetNX(ctx, key, token, g.ttl)
	if err != nil {
		g.logger.WithError(err).Warn("decision guard unavailable, proceeding", map[string]interface{}{
			"applicationId": applicationID,
		})
		return func() {}, true
	}
	if !set {
		return nil, false
	}

	return func() {
		if err := g.client.Del(context.Background(), key); err != nil {
			g.logger.WithError(err).Warn("failed to clear decision marker", map[string]interface{}{
				"applicationId": applicationID,
			})
		}
	}, true
}
