package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a per-key token bucket. Every key shares the same burst and
// refill rate; buckets start full.
type Limiter struct {
	mu     sync.Mutex
	m      map[string]*rate.Limiter
	burst  int
	perSec rate.Limit
	now    func() time.Time
}

func New(burst int, refillPerSec float64) *Limiter {
	return &Limiter{
		m:      make(map[string]*rate.Limiter),
		burst:  burst,
		perSec: rate.Limit(refillPerSec),
		now:    time.Now,
	}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	b, ok := l.m[key]
	if !ok {
		b = rate.NewLimiter(l.perSec, l.burst)
		l.m[key] = b
	}
	now := l.now()
	l.mu.Unlock()
	return b.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
