// FILE: internal/pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"pagecraft-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Limiter enforces a fixed-window request cap. With Redis the cap holds
// across instances; without it (or when Redis is down) counting falls back
// to an in-process cache, which still stops a single instance from being
// hammered.
type Limiter struct {
	rdb    *redis.Client
	local  *cache.Cache
	logger logger.ILogger
}

func NewLimiter(rdb *redis.Client, log logger.ILogger) *Limiter {
	return &Limiter{
		rdb:    rdb,
		local:  cache.New(time.Minute, 5*time.Minute),
		logger: log,
	}
}

// Allow counts a hit against key and reports whether it stays within limit
// for the current window. The first hit of a window sets the expiry.
func (l *Limiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) bool {
	if l.rdb == nil {
		return l.allowLocal(key, limit, window)
	}

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("RateLimit", "Redis unavailable, counting locally", map[string]interface{}{"key": key, "error": err.Error()})
		return l.allowLocal(key, limit, window)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			l.logger.Warn("RateLimit", "Failed to set window expiry", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}

	return count <= limit
}

// allowLocal mirrors the Redis INCR+EXPIRE pattern on an in-process cache.
// go-cache increments atomically, so concurrent requests count correctly.
func (l *Limiter) allowLocal(key string, limit int64, window time.Duration) bool {
	if err := l.local.Add(key, int64(1), window); err == nil {
		return limit >= 1
	}
	count, err := l.local.IncrementInt64(key, 1)
	if err != nil {
		// Entry expired between Add and Increment. Start a fresh window.
		l.local.Set(key, int64(1), window)
		return limit >= 1
	}
	return count <= limit
}

// Middleware limits requests per authenticated user, falling back to the
// client IP before auth ran. name keeps counters of different endpoints apart.
func (l *Limiter) Middleware(name string, limit int64, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject := c.IP()
		if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
			subject = uid
		}

		key := fmt.Sprintf("ratelimit:%s:%s", name, subject)
		if !l.Allow(c.UserContext(), key, limit, window) {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many attempts, try again later")
		}
		return c.Next()
	}
}
