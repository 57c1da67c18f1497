package rate

import (
	"context"
	"sync"
	"time"

	xrate "golang.org/x/time/rate"
)

// MemoryLimiter enforces limits per key within a single process. It is the
// fallback when no Redis address is configured; deployments with more than
// one replica should use RedisLimiter instead.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
	max     int
	window  time.Duration
}

type memoryBucket struct {
	lim      *xrate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[string]*memoryBucket),
		max:     max,
		window:  window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.evictStale(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &memoryBucket{
			lim: xrate.NewLimiter(xrate.Every(l.window/time.Duration(l.max)), l.max),
		}
		l.buckets[key] = b
	}
	b.lastSeen = now

	r := b.lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		return Result{Allowed: false, RetryAfter: delay}, nil
	}
	return Result{
		Allowed:   true,
		Remaining: int64(b.lim.TokensAt(now)),
	}, nil
}

// evictStale drops buckets idle for two full windows. Called with the lock held.
func (l *MemoryLimiter) evictStale(now time.Time) {
	cutoff := now.Add(-2 * l.window)
	for k, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, k)
		}
	}
}
