package memory

import (
	"context"
	"sync"
	"time"
)

type attemptEntry struct {
	count     int
	expiresAt time.Time
}

// AttemptCounter counts wrong code guesses in-process when redis is unreachable.
type AttemptCounter struct {
	mu        sync.Mutex
	hits      map[string]attemptEntry
	now       func() time.Time
	nextSweep time.Time
}

func NewAttemptCounter() *AttemptCounter {
	return &AttemptCounter{hits: make(map[string]attemptEntry), now: time.Now}
}

func (a *AttemptCounter) Hit(ctx context.Context, key string, window time.Duration) (int, error) {
	if window <= 0 {
		window = time.Minute
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	a.sweep(now)

	e, ok := a.hits[key]
	if !ok || !now.Before(e.expiresAt) {
		e = attemptEntry{expiresAt: now.Add(window)}
	}
	e.count++
	a.hits[key] = e
	return e.count, nil
}

func (a *AttemptCounter) Reset(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.hits, key)
	return nil
}

// Caller holds mu.
func (a *AttemptCounter) sweep(now time.Time) {
	if now.Before(a.nextSweep) {
		return
	}
	for k, e := range a.hits {
		if !now.Before(e.expiresAt) {
			delete(a.hits, k)
		}
	}
	a.nextSweep = now.Add(sweepInterval)
}
