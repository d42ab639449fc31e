package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furfolio/enginekit/pkg/ratelimit"
)

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"cloudflare", map[string]string{"Cf-Connecting-Ip": "1.1.1.1", "X-Forwarded-For": "2.2.2.2"}, "9.9.9.9:1", "1.1.1.1"},
		{"forwarded first hop", map[string]string{"X-Forwarded-For": "2.2.2.2, 10.0.0.1"}, "9.9.9.9:1", "2.2.2.2"},
		{"real ip", map[string]string{"X-Real-Ip": "3.3.3.3"}, "9.9.9.9:1", "3.3.3.3"},
		{"invalid header ignored", map[string]string{"X-Forwarded-For": "bogus"}, "9.9.9.9:1", "9.9.9.9"},
		{"remote addr", nil, "[::1]:8080", "::1"},
		{"remote addr without port", nil, "4.4.4.4", "4.4.4.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ratelimit.ClientIP(r))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	clock := newClock()
	l := newLimiter(t, clock, ratelimit.Config{Capacity: 2, RefillRate: 1, RefillInterval: 10 * time.Second})
	h := ratelimit.Middleware(l, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/engines", nil)
		r.RemoteAddr = "5.5.5.5:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	w := do()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))

	require.Equal(t, http.StatusNoContent, do().Code)

	w = do()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	clock.Advance(10 * time.Second)
	assert.Equal(t, http.StatusNoContent, do().Code)
}

func TestMiddleware_CustomKey(t *testing.T) {
	t.Parallel()

	l := newLimiter(t, newClock(), ratelimit.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Hour})
	byHeader := func(r *http.Request) string { return r.Header.Get("X-Staff") }
	h := ratelimit.Middleware(l, byHeader, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	for _, staff := range []string{"s-1", "s-2"} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Staff", staff)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
