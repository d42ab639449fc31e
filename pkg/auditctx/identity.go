package auditctx

import (
	"context"
	"sync/atomic"
)

// Identity is the audit context attached to every recorded event.
// Empty strings mean the field is absent.
type Identity struct {
	Role      string `json:"role,omitempty"`
	StaffID   string `json:"staff_id,omitempty"`
	Subsystem string `json:"subsystem,omitempty"`
}

// IsZero reports whether no field is set.
func (i Identity) IsZero() bool {
	return i == Identity{}
}

type identityKey struct{}

// WithIdentity returns a context carrying id for the duration of a call.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Session holds the identity of the signed-in staff member. Login and Logout
// swap the whole identity at once, so a concurrent Snapshot sees either the
// old or the new identity and never a mix of both.
type Session struct {
	current atomic.Pointer[Identity]
}

// NewSession returns a signed-out session.
func NewSession() *Session {
	return &Session{}
}

// Login replaces the session identity.
func (s *Session) Login(role, staffID string) {
	s.current.Store(&Identity{Role: role, StaffID: staffID})
}

// Logout clears the session identity.
func (s *Session) Logout() {
	s.current.Store(nil)
}

// Snapshot returns the current identity.
func (s *Session) Snapshot() Identity {
	if s == nil {
		return Identity{}
	}
	if id := s.current.Load(); id != nil {
		return *id
	}
	return Identity{}
}

// Resolver produces the identity for one log call.
type Resolver struct {
	subsystem string
	session   *Session
}

// NewResolver binds a subsystem name to an optional session.
func NewResolver(subsystem string, session *Session) Resolver {
	return Resolver{subsystem: subsystem, session: session}
}

// Subsystem returns the bound subsystem name.
func (r Resolver) Subsystem() string {
	return r.subsystem
}

// Resolve returns the identity from ctx when present, otherwise the session
// snapshot. The bound subsystem always overrides the subsystem field when set.
func (r Resolver) Resolve(ctx context.Context) Identity {
	id, ok := FromContext(ctx)
	if !ok {
		id = r.session.Snapshot()
	}
	if r.subsystem != "" {
		id.Subsystem = r.subsystem
	}
	return id
}
