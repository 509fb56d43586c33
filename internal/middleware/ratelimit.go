package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/chroniclehq/feedgen/internal/request"
)

// defaultRateLimit applies when RATE_LIMIT is unset.
const defaultRateLimit = "60-M"

// RedisRateLimiter owns the Redis connection shared by the rate limiter and
// the cycle guard.
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter connects to Redis and verifies the connection.
func NewRedisRateLimiter(redisURL string) (*RedisRateLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRateLimiter{client: client}, nil
}

// Close closes the Redis connection.
func (r *RedisRateLimiter) Close() error {
	return r.client.Close()
}

// Ping checks if Redis is reachable.
func (r *RedisRateLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Client exposes the underlying Redis client for components that share the
// connection, such as the cycle guard.
func (r *RedisRateLimiter) Client() *redis.Client {
	return r.client
}

// RateLimit returns middleware that enforces rateStr (ulule format, e.g.
// "60-M") per client IP, with counters stored in Redis.
func RateLimit(redisLimiter *RedisRateLimiter, rateStr string) (func(http.Handler) http.Handler, error) {
	if rateStr == "" {
		rateStr = defaultRateLimit
	}
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rateStr, err)
	}
	store, err := redisstore.NewStore(redisLimiter.client)
	if err != nil {
		return nil, err
	}
	return RateLimitWithStore(store, rate), nil
}

// RateLimitWithStore builds the middleware on an explicit limiter store.
// Tests use the in-memory store.
func RateLimitWithStore(store limiter.Store, rate limiter.Rate) func(http.Handler) http.Handler {
	instance := limiter.New(store, rate)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))
	return mw.Handler
}
