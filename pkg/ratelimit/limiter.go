package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Config defines a token bucket per key.
type Config struct {
	Capacity       int           `env:"DIAGNOSTICS_RATE_CAPACITY" envDefault:"60"` // burst size
	RefillRate     int           `env:"DIAGNOSTICS_RATE_REFILL" envDefault:"1"`    // tokens added per interval
	RefillInterval time.Duration `env:"DIAGNOSTICS_RATE_INTERVAL" envDefault:"1s"` // refill period
	IdleTTL        time.Duration `env:"DIAGNOSTICS_RATE_IDLE_TTL" envDefault:"1h"` // buckets unused this long are dropped
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Result is the outcome of one Allow call.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	allowed   bool
	now       time.Time
}

func (r Result) Allowed() bool { return r.allowed }

// RetryAfter is zero for allowed requests.
func (r Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(r.ResetAt.Sub(r.now), 0)
}

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// Limiter keeps one in-memory token bucket per key.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

func New(cfg Config, opts ...Option) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l := &Limiter{cfg: cfg, now: time.Now, buckets: make(map[string]*bucket)}
	for _, opt := range opts {
		opt(l)
	}
	l.lastSweep = l.now()
	return l, nil
}

func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN takes n tokens from the bucket of key. A refused request leaves
// the bucket untouched.
func (l *Limiter) AllowN(_ context.Context, key string, n int) (Result, error) {
	if n <= 0 {
		return Result{}, fmt.Errorf("%w: must be positive, got %d", ErrInvalidTokenCount, n)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.cfg.Capacity, lastRefill: now}
		l.buckets[key] = b
	}

	// cap the interval count so a long idle period cannot overflow
	maxIntervals := int64(l.cfg.Capacity/l.cfg.RefillRate + 1)
	if elapsed := int(min(int64(now.Sub(b.lastRefill)/l.cfg.RefillInterval), maxIntervals)); elapsed > 0 {
		b.tokens = min(b.tokens+elapsed*l.cfg.RefillRate, l.cfg.Capacity)
		b.lastRefill = now
	}

	allowed := b.tokens >= n
	if allowed {
		b.tokens -= n
	}
	b.lastAccess = now

	return Result{
		allowed:   allowed,
		Limit:     l.cfg.Capacity,
		Remaining: b.tokens,
		ResetAt:   b.lastRefill.Add(l.cfg.RefillInterval),
		now:       now,
	}, nil
}

// Reset forgets the bucket of key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep drops idle buckets at most once per IdleTTL. Callers hold mu.
func (l *Limiter) sweep(now time.Time) {
	if l.cfg.IdleTTL <= 0 || now.Sub(l.lastSweep) < l.cfg.IdleTTL {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastAccess) > l.cfg.IdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}
