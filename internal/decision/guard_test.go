package decision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vyapara-admin/internal/common/config"
	"vyapara-admin/internal/common/database"
	"vyapara-admin/internal/common/logger"
)

func newMockedGuard(t *testing.T) (*Guard, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	guard := NewGuard(&database.RedisClient{Client: client}, config.ReviewConfig{DecisionGuardTTL: 30}, logger.NewNoOpLogger())
	return guard, mock
}

func TestGuardAcquireSetsMarkerWithTTL(t *testing.T) {
	guard, mock := newMockedGuard(t)
	mock.Regexp().ExpectSetNX("decision:inflight:app-1", `.+`, 30*time.Second).SetVal(true)
	mock.ExpectDel("decision:inflight:app-1").SetVal(1)

	release, ok := guard.Acquire(context.Background(), "app-1")
	require.True(t, ok)
	require.NotNil(t, release)
	release()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGuardAcquireRefusedWhileMarkerHeld(t *testing.T) {
	guard, mock := newMockedGuard(t)
	mock.Regexp().ExpectSetNX("decision:inflight:app-1", `.+`, 30*time.Second).SetVal(false)

	release, ok := guard.Acquire(context.Background(), "app-1")
	assert.False(t, ok)
	assert.Nil(t, release)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGuardDegradesToAllowingOnRedisError(t *testing.T) {
	guard, mock := newMockedGuard(t)
	mock.Regexp().ExpectSetNX("decision:inflight:app-1", `.+`, 30*time.Second).
		SetErr(errors.New("connection refused"))

	release, ok := guard.Acquire(context.Background(), "app-1")
	assert.True(t, ok)
	require.NotNil(t, release)
	release()
}
