package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "furfolio-engines/1.0"

// Attempt describes one delivery attempt.
type Attempt struct {
	Number     int
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Sender posts JSON payloads with retries, optional signing and an optional
// circuit breaker. Safe for concurrent use.
type Sender struct {
	client     *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    Backoff
	secret     string
	breaker    *CircuitBreaker
	headers    http.Header
	onAttempt  func(Attempt)
}

// Option configures a Sender.
type Option func(*Sender)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Sender) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout bounds each attempt. Defaults to 10s.
func WithTimeout(d time.Duration) Option {
	return func(s *Sender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRetries sets the number of retries after the first attempt.
func WithRetries(n int, b Backoff) Option {
	return func(s *Sender) {
		if n >= 0 {
			s.maxRetries = n
		}
		if b != nil {
			s.backoff = b
		}
	}
}

// WithSecret signs every payload, see Sign.
func WithSecret(secret string) Option {
	return func(s *Sender) { s.secret = secret }
}

func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(s *Sender) { s.breaker = cb }
}

func WithHeader(key, value string) Option {
	return func(s *Sender) {
		if key != "" && value != "" {
			s.headers.Set(key, value)
		}
	}
}

// WithOnAttempt observes every attempt, successful or not.
func WithOnAttempt(fn func(Attempt)) Option {
	return func(s *Sender) { s.onAttempt = fn }
}

func NewSender(opts ...Option) *Sender {
	s := &Sender{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout:    10 * time.Second,
		maxRetries: 3,
		backoff:    DefaultBackoff(),
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send marshals data to JSON and POSTs it to target. 4xx responses other
// than 408, 425 and 429 are not retried.
func (s *Sender) Send(ctx context.Context, target string, data any) error {
	if err := validateURL(target); err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Join(ErrInvalidPayload, err)
	}

	if s.breaker != nil && !s.breaker.Allow() {
		return ErrCircuitOpen
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(s.backoff.NextInterval(attempt))
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}

		status, d, err := s.deliver(ctx, target, payload)
		if s.onAttempt != nil {
			s.onAttempt(Attempt{Number: attempt + 1, StatusCode: status, Duration: d, Err: err})
		}
		if s.breaker != nil {
			if err == nil {
				s.breaker.RecordSuccess()
			} else {
				s.breaker.RecordFailure()
			}
		}
		if err == nil {
			return nil
		}
		lastErr = err
		if isPermanent(status) {
			return errors.Join(ErrPermanentFailure, err)
		}
	}

	return errors.Join(ErrDeliveryFailed, fmt.Errorf("%d attempts", s.maxRetries+1), lastErr)
}

func (s *Sender) deliver(ctx context.Context, target string, payload []byte) (int, time.Duration, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return 0, time.Since(start), err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range s.headers {
		req.Header[k] = v
	}
	if s.secret != "" {
		sig, err := Sign(s.secret, payload, time.Now())
		if err != nil {
			return 0, time.Since(start), err
		}
		sig.Apply(req.Header)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, time.Since(start), errors.Join(ErrTimeout, err)
		}
		return 0, time.Since(start), errors.Join(ErrTemporaryFailure, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	d := time.Since(start)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.ReplaceAll(strings.TrimSpace(string(body)), "\n", " ")
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		return resp.StatusCode, d, fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, msg)
	}
	return resp.StatusCode, d, nil
}

func validateURL(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return errors.Join(ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Join(ErrInvalidURL, errors.New("only http and https are supported"))
	}
	if u.Host == "" {
		return errors.Join(ErrInvalidURL, errors.New("host is required"))
	}
	return nil
}

func isPermanent(status int) bool {
	if status < 400 || status >= 500 {
		return false
	}
	switch status {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	}
	return true
}
