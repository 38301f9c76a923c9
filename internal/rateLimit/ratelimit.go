package rateLimit

import (
	"context"
	"time"

	redisadapter "github.com/robertarktes/flight-booking-web/internal/adapters/redis"
)

type RateLimiter struct {
	redis *redisadapter.Cache
}

// NewRateLimiter returns nil for a nil cache; a nil limiter allows everything.
func NewRateLimiter(redis *redisadapter.Cache) *RateLimiter {
	if redis == nil {
		return nil
	}
	return &RateLimiter{redis: redis}
}

// Allow counts one hit against key in a fixed window of period. Redis
// failures let the request through.
func (rl *RateLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) bool {
	if rl == nil || rate <= 0 {
		return true
	}
	fullKey := "rl:" + key

	pipe := rl.redis.Client().Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, period)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return true
	}

	return incr.Val() <= int64(rate)
}
