package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furfolio/enginekit/pkg/ratelimit"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newLimiter(t *testing.T, clock *fakeClock, cfg ratelimit.Config) *ratelimit.Limiter {
	t.Helper()
	l, err := ratelimit.New(cfg, ratelimit.WithClock(clock.Now))
	require.NoError(t, err)
	return l
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  ratelimit.Config
	}{
		{"zero capacity", ratelimit.Config{RefillRate: 1, RefillInterval: time.Second}},
		{"zero refill", ratelimit.Config{Capacity: 1, RefillInterval: time.Second}},
		{"zero interval", ratelimit.Config{Capacity: 1, RefillRate: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ratelimit.New(tt.cfg)
			require.ErrorIs(t, err, ratelimit.ErrInvalidConfig)
		})
	}
}

func TestLimiter_BurstAndRefill(t *testing.T) {
	t.Parallel()

	clock := newClock()
	l := newLimiter(t, clock, ratelimit.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Second})
	ctx := context.Background()

	for i := range 3 {
		res, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, 2-i, res.Remaining)
		assert.Zero(t, res.RetryAfter())
	}

	res, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, time.Second, res.RetryAfter())

	other, err := l.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, other.Allowed(), "keys have separate buckets")

	clock.Advance(time.Second)
	res, err = l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 0, res.Remaining)

	clock.Advance(time.Hour)
	res, err = l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining, "refill is capped at capacity")
}

func TestLimiter_AllowN(t *testing.T) {
	t.Parallel()

	l := newLimiter(t, newClock(), ratelimit.Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Second})
	ctx := context.Background()

	_, err := l.AllowN(ctx, "a", 0)
	require.ErrorIs(t, err, ratelimit.ErrInvalidTokenCount)

	res, err := l.AllowN(ctx, "a", 6)
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, 5, res.Remaining, "refused request keeps tokens")

	res, err = l.AllowN(ctx, "a", 5)
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestLimiter_ResetAndSweep(t *testing.T) {
	t.Parallel()

	clock := newClock()
	l := newLimiter(t, clock, ratelimit.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute, IdleTTL: time.Minute})
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a")
	_, _ = l.Allow(ctx, "b")
	assert.Equal(t, 2, l.Len())

	l.Reset("a")
	assert.Equal(t, 1, l.Len())

	clock.Advance(2 * time.Minute)
	_, _ = l.Allow(ctx, "c")
	assert.Equal(t, 1, l.Len(), "idle bucket b is swept")
}

func TestLimiter_Concurrent(t *testing.T) {
	t.Parallel()

	l := newLimiter(t, newClock(), ratelimit.Config{Capacity: 50, RefillRate: 1, RefillInterval: time.Hour})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := l.Allow(context.Background(), "k")
			if err == nil && res.Allowed() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}
