package memory

import (
	"context"
	"sync"
	"time"
)

// sweepInterval bounds how often expired entries are purged.
const sweepInterval = time.Minute

// Cooldown is a single-process stand-in for the redis fixed-window limiter.
type Cooldown struct {
	mu        sync.Mutex
	until     map[string]time.Time
	now       func() time.Time
	nextSweep time.Time
}

func NewCooldown() *Cooldown {
	return &Cooldown{until: make(map[string]time.Time), now: time.Now}
}

func (c *Cooldown) Acquire(ctx context.Context, key string, window time.Duration) (bool, error) {
	if window <= 0 {
		window = time.Minute
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweep(now)

	if t, ok := c.until[key]; ok && now.Before(t) {
		return false, nil
	}
	c.until[key] = now.Add(window)
	return true, nil
}

// sweep drops elapsed windows. Caller holds mu.
func (c *Cooldown) sweep(now time.Time) {
	if now.Before(c.nextSweep) {
		return
	}
	for k, t := range c.until {
		if !now.Before(t) {
			delete(c.until, k)
		}
	}
	c.nextSweep = now.Add(sweepInterval)
}
