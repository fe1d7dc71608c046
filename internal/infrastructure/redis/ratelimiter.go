package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

// FixedWindowLimiter implements a fixed-window rate limiter using Redis:
// INCR key; if count == 1 then EXPIRE key window
// key should already include the identity being limited.
type FixedWindowLimiter struct {
	rdb *goredis.Client
}

func NewFixedWindowLimiter(c *Client) *FixedWindowLimiter {
	if c == nil {
		return &FixedWindowLimiter{rdb: nil}
	}
	return &FixedWindowLimiter{rdb: c.rdb}
}

type Decision struct {
	Allowed    bool
	Count      int
	RetryAfter time.Duration // 0 if allowed
}

// AllowFixedWindow returns whether request is allowed for given key+window.
// window must be >= 1s, limit >= 1.
func (l *FixedWindowLimiter) AllowFixedWindow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if limit <= 0 {
		return Decision{Allowed: true}, nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if l.rdb == nil {
		// Redis disabled => allow (fail-open)
		return Decision{Allowed: true}, nil
	}

	// Lua to ensure atomic INCR + set expire on first hit
	// returns: {count, ttl_ms}
	const lua = `
local c = redis.call("INCR", KEYS[1])
if c == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {c, ttl}
`
	ttlms := window.Milliseconds()
	if ttlms <= 0 {
		ttlms = 60000
	}

	res, err := l.rdb.Eval(ctx, lua, []string{key}, ttlms).Result()
	if err != nil {
		return Decision{}, domain.ErrRedisUnavailable(fmt.Errorf("ratelimit redis eval: %w", err))
	}

	arr, ok := res.([]any)
	if !ok || len(arr) != 2 {
		return Decision{}, fmt.Errorf("ratelimit redis eval: unexpected result type")
	}

	count := int(arr[0].(int64))
	ttlGot := time.Duration(arr[1].(int64)) * time.Millisecond

	d := Decision{
		Allowed: count <= limit,
		Count:   count,
	}
	if !d.Allowed {
		if ttlGot > 0 {
			d.RetryAfter = ttlGot
		} else {
			d.RetryAfter = window
		}
	}

	return d, nil
}

// Acquire lets key through once per window. Used as the per-address
// verification code cooldown.
func (l *FixedWindowLimiter) Acquire(ctx context.Context, key string, window time.Duration) (bool, error) {
	d, err := l.AllowFixedWindow(ctx, key, 1, window)
	if err != nil {
		return false, err
	}
	if !d.Allowed {
		logger.WithCtx(ctx).Debug().
			Str("key", key).
			Dur("retry_after", d.RetryAfter).
			Msg("cooldown active")
	}
	return d.Allowed, nil
}

// Hit counts one event under key inside window and returns the running count.
func (l *FixedWindowLimiter) Hit(ctx context.Context, key string, window time.Duration) (int, error) {
	d, err := l.AllowFixedWindow(ctx, key, 1, window)
	if err != nil {
		return 0, err
	}
	return d.Count, nil
}

// Reset drops the window for key.
func (l *FixedWindowLimiter) Reset(ctx context.Context, key string) error {
	if l.rdb == nil {
		return nil
	}
	if err := l.rdb.Del(ctx, key).Err(); err != nil {
		return domain.ErrRedisUnavailable(fmt.Errorf("ratelimit reset: %w", err))
	}
	return nil
}
