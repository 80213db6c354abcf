// Package lock implements port.JobLocker.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mlms:lock:"

// releaseScript deletes the key only while it still holds our token, so a
// lock that expired and was taken by another replica is left alone.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisLocker serialises jobs across replicas with SET NX PX.
type RedisLocker struct {
	client   redis.Cmdable
	logger   *slog.Logger
	newToken func() (string, error)
}

// NewRedisLocker creates a locker on client.
func NewRedisLocker(client redis.Cmdable, logger *slog.Logger) *RedisLocker {
	return &RedisLocker{client: client, logger: logger, newToken: randomToken}
}

// TryLock attempts to take the named lock for ttl without waiting.
func (l *RedisLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	token, err := l.newToken()
	if err != nil {
		return nil, false, fmt.Errorf("generate lock token: %w", err)
	}
	key := keyPrefix + name

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// The job's context may already be cancelled; release on a fresh one.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.client.Eval(rctx, releaseScript, []string{key}, token).Err(); err != nil {
			l.logger.Error("failed to release job lock", "lock", name, "error", err)
		}
	}
	return release, true, nil
}

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
