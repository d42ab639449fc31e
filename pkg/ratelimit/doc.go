// Package ratelimit provides an in-memory token bucket limiter keyed by
// arbitrary strings, plus HTTP middleware that keys by client IP.
//
//	l, err := ratelimit.New(ratelimit.Config{Capacity: 10, RefillRate: 1, RefillInterval: time.Second})
//	r.Use(ratelimit.Middleware(l, nil, logger))
package ratelimit
