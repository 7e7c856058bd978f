package security

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ticket-storefront/monitoring"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per caller in fixed Redis windows.
type RateLimiter struct {
	redis  redis.Cmdable
	limit  int
	window time.Duration
}

func NewRateLimiter(redisClient redis.Cmdable, perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &RateLimiter{redis: redisClient, limit: perMinute, window: time.Minute}
}

// Allow records one request for identifier and reports whether it is
// still within the limit.
func (r *RateLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	key := "ratelimit:" + identifier

	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("counting request: %w", err)
	}
	if count == 1 {
		if err := r.redis.Expire(ctx, key, r.window).Err(); err != nil {
			return false, fmt.Errorf("setting window: %w", err)
		}
	}

	return count <= int64(r.limit), nil
}

// Limit guards the write routes. Requests from obvious bots are refused;
// when Redis is down requests pass.
func (r *RateLimiter) Limit(e *core.RequestEvent) error {
	if IsSuspiciousUserAgent(e.Request.UserAgent()) {
		monitoring.TrackRateLimited("bot")
		return apis.NewForbiddenError("Access denied", nil)
	}

	allowed, err := r.Allow(e.Request.Context(), identifier(e))
	if err != nil {
		slog.Warn("Rate limiter unavailable", "error", err)
		return e.Next()
	}
	if !allowed {
		monitoring.TrackRateLimited("rate")
		return apis.NewTooManyRequestsError("Too many requests. Please try again later.", nil)
	}

	return e.Next()
}

func identifier(e *core.RequestEvent) string {
	if e.Auth != nil {
		return "user:" + e.Auth.Id
	}
	return "ip:" + e.RealIP()
}

var suspiciousAgents = []string{"bot", "crawler", "spider", "scraper"}

func IsSuspiciousUserAgent(ua string) bool {
	ua = strings.ToLower(ua)
	for _, pattern := range suspiciousAgents {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}
