package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultLockTTL caps how long a crashed cycle can block a user before the
// guard self-expires.
const DefaultLockTTL = 2 * time.Minute

// releaseScript deletes the lock key only when it still holds this
// acquisition's token, so an expired-and-reacquired lock is never released
// by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard is a cross-instance cycle guard backed by SET NX with a TTL.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisGuard creates a new Redis-backed cycle guard
func NewRedisGuard(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisGuard {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisGuard{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func lockKey(userID uuid.UUID) string {
	return "feedgen:cycle_guard:" + userID.String()
}

// Acquire takes the guard for a user or fails. ErrCycleInFlight means
// another cycle holds it; any other error means Redis itself is unavailable.
func (g *RedisGuard) Acquire(ctx context.Context, userID uuid.UUID) (func(), error) {
	token := uuid.NewString()
	key := lockKey(userID)

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire cycle guard: %w", err)
	}
	if !ok {
		return nil, ErrCycleInFlight
	}

	release := func() {
		// The cycle's own context may already be done; the release still
		// has to happen.
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		if err := releaseScript.Run(ctx, g.client, []string{key}, token).Err(); err != nil {
			g.logger.Warn("cycle_guard_release_failed",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}
	return release, nil
}

var _ CycleGuard = (*RedisGuard)(nil)
