package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// LoginRateLimiter implements a fixed-window counter limiting authentication
// attempts per identifier. It satisfies domain.LoginRateLimiter.
type LoginRateLimiter struct {
	rdb      *goredis.Client
	attempts int
	window   time.Duration
}

// NewLoginRateLimiter creates a login rate limiter.
// attempts: maximum attempts allowed per window.
// window: length of the counting window.
func NewLoginRateLimiter(rdb *goredis.Client, attempts int, window time.Duration) *LoginRateLimiter {
	return &LoginRateLimiter{
		rdb:      rdb,
		attempts: attempts,
		window:   window,
	}
}

// Allow records one attempt for the identifier and reports whether it is
// within the limit. The window starts on the first attempt and resets when
// the key expires.
func (l *LoginRateLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	key := fmt.Sprintf("rate_limit:login:%s", identifier)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= int64(l.attempts), nil
}
