package locks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"venuebook/internal/shared/constants"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lua script releasing the lock only when the caller still owns it
const luaReleaseLock = `
-- KEYS[1] = lock key
-- ARGV[1] = owner token
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`

var releaseScript = redis.NewScript(luaReleaseLock)

// RedisLocker is a distributed per-slot lock (SET NX PX + owner token) shared by
// every API instance.
type RedisLocker struct {
	client        *redis.Client
	ttl           time.Duration
	wait          time.Duration
	retryInterval time.Duration
}

func NewRedisLocker(client *redis.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		client:        client,
		ttl:           ttl,
		wait:          wait,
		retryInterval: 20 * time.Millisecond,
	}
}

func (r *RedisLocker) Lock(ctx context.Context, slotID uuid.UUID) (func(), error) {
	key := constants.SlotLockKey(slotID)
	token := uuid.NewString()
	deadline := time.Now().Add(r.wait)

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire slot lock: %w", err)
		}
		if ok {
			return func() { r.release(key, token) }, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrNotAcquired
		}

		select {
		case <-time.After(r.retryInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (r *RedisLocker) release(key, token string) {
	// the caller's ctx may already be cancelled; the lock must still go
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
		logger.GetDefault().Warn("failed to release slot lock, it will expire by TTL",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}
