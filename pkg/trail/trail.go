package trail

import (
	"context"
	"errors"
	"strings"
)

// DefaultCapacity is the number of lines a trail keeps.
const DefaultCapacity = 1000

// Store persists capped lists of strings under a key.
type Store interface {
	// Push appends line to the list at key and trims the list to its newest
	// limit entries.
	Push(ctx context.Context, key, line string, limit int) error
	// List returns the lines at key, oldest first. A missing key yields an
	// empty list.
	List(ctx context.Context, key string) ([]string, error)
}

// Trail is a persisted, string-only audit log with a fixed capacity,
// separate from an engine's in-memory ring buffer.
type Trail struct {
	store    Store
	key      string
	capacity int
}

// Option configures a Trail.
type Option func(*Trail)

// WithCapacity overrides DefaultCapacity.
func WithCapacity(n int) Option {
	return func(t *Trail) { t.capacity = n }
}

// New returns a trail stored under key.
func New(store Store, key string, opts ...Option) (*Trail, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyKey
	}
	t := &Trail{store: store, key: key, capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(t)
	}
	if t.capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return t, nil
}

// Append adds a line, dropping the oldest lines beyond capacity.
func (t *Trail) Append(ctx context.Context, line string) error {
	if err := t.store.Push(ctx, t.key, line, t.capacity); err != nil {
		return errors.Join(ErrAppendFailed, err)
	}
	return nil
}

// Entries returns the stored lines, oldest first.
func (t *Trail) Entries(ctx context.Context) ([]string, error) {
	lines, err := t.store.List(ctx, t.key)
	if err != nil {
		return nil, errors.Join(ErrReadFailed, err)
	}
	if lines == nil {
		lines = []string{}
	}
	return lines, nil
}

func (t *Trail) Key() string { return t.key }

func (t *Trail) Capacity() int { return t.capacity }
