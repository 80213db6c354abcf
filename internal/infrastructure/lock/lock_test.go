package lock

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func fixedToken() (string, error) { return "token-1", nil }

func TestRedisLocker_TryLock(t *testing.T) {
	ctx := context.Background()

	t.Run("acquires and releases with compare-and-delete", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		locker := NewRedisLocker(db, testLogger())
		locker.newToken = fixedToken

		mock.ExpectSetNX("mlms:lock:refresh-overdue", "token-1", time.Minute).SetVal(true)
		mock.ExpectEval(releaseScript, []string{"mlms:lock:refresh-overdue"}, "token-1").SetVal(int64(1))

		release, ok, err := locker.TryLock(ctx, "refresh-overdue", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		require.NotNil(t, release)

		release()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("held elsewhere", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		locker := NewRedisLocker(db, testLogger())
		locker.newToken = fixedToken

		mock.ExpectSetNX("mlms:lock:sweep-defaults", "token-1", time.Minute).SetVal(false)

		release, ok, err := locker.TryLock(ctx, "sweep-defaults", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, release)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis unavailable", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		locker := NewRedisLocker(db, testLogger())
		locker.newToken = fixedToken

		mock.ExpectSetNX("mlms:lock:sweep-defaults", "token-1", time.Minute).SetErr(errors.New("connection refused"))

		_, ok, err := locker.TryLock(ctx, "sweep-defaults", time.Minute)
		require.Error(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("token generation failure", func(t *testing.T) {
		db, _ := redismock.NewClientMock()
		locker := NewRedisLocker(db, testLogger())
		locker.newToken = func() (string, error) { return "", errors.New("entropy exhausted") }

		_, ok, err := locker.TryLock(ctx, "x", time.Minute)
		require.Error(t, err)
		assert.False(t, ok)
	})
}

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()

	release, ok, err := l.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second holder is refused")

	_, ok, _ = l.TryLock(ctx, "other", time.Minute)
	assert.True(t, ok, "locks are per name")

	release()
	release()

	_, ok, _ = l.TryLock(ctx, "job", time.Minute)
	assert.True(t, ok, "released lock can be retaken")
}
