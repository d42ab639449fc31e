package cloudsync

import (
	"context"
	"sync"
	"sync/atomic"
)

// Remote applies a single change to the cloud store. It returns ErrConflict
// when the remote holds a newer version and ErrRemoteUnavailable when it
// cannot be reached.
type Remote interface {
	Apply(ctx context.Context, c Change) error
}

// RemoteFunc adapts a function to the Remote interface.
type RemoteFunc func(ctx context.Context, c Change) error

func (f RemoteFunc) Apply(ctx context.Context, c Change) error { return f(ctx, c) }

// MemoryRemote is a versioned in-memory record store used in tests and
// previews.
type MemoryRemote struct {
	mu       sync.Mutex
	versions map[string]int64
	down     atomic.Bool
}

func NewMemoryRemote() *MemoryRemote {
	return &MemoryRemote{versions: make(map[string]int64)}
}

// SetAvailable toggles whether Apply succeeds.
func (r *MemoryRemote) SetAvailable(ok bool) { r.down.Store(!ok) }

// Apply stores an upsert when its version is newer than the stored one and
// removes the record on delete. Deleting a missing record succeeds.
func (r *MemoryRemote) Apply(ctx context.Context, c Change) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.down.Load() {
		return ErrRemoteUnavailable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := c.key()
	current, exists := r.versions[key]
	if exists && c.Version < current {
		return ErrConflict
	}
	switch c.Kind {
	case KindDelete:
		delete(r.versions, key)
	default:
		if exists && c.Version == current {
			return ErrConflict
		}
		r.versions[key] = c.Version
	}
	return nil
}

// Version returns the stored version of a record.
func (r *MemoryRemote) Version(recordType, recordID string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.versions[recordType+"/"+recordID]
	return v, ok
}

// Len returns the number of stored records.
func (r *MemoryRemote) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.versions)
}
