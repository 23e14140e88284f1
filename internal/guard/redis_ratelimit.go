package guard

import (
	"context"
	"log/slog"
	"time"

	"github.com/playhub/arena/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed window limiter shared by every API instance.
// Redis errors fail open so a cache outage never blocks logins.
type RedisRateLimiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
	logger *slog.Logger
}

// NewRedisRateLimiter creates a limiter whose counters live under prefix.
func NewRedisRateLimiter(client redis.UniversalClient, prefix string, limit int, window time.Duration, logger *slog.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, limit: limit, window: window, prefix: prefix, logger: logger}
}

func (rl *RedisRateLimiter) Check(ctx context.Context, key string) domain.GuardResult {
	k := rl.prefix + ":" + key

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		rl.logger.Warn("rate limiter unavailable, allowing request", "key", k, "error", err)
		return domain.GuardResult{Allowed: true}
	}

	if incr.Val() > int64(rl.limit) {
		return limited(rl.limit, rl.window)
	}
	return domain.GuardResult{Allowed: true}
}
