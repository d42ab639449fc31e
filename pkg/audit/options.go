package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/furfolio/enginekit/pkg/auditctx"
	"github.com/furfolio/enginekit/pkg/escalation"
)

const (
	// DefaultCapacity is the ring buffer size used by most engines.
	DefaultCapacity = 20
	// DefaultSinkTimeout bounds how long RecordEvent waits for the sink.
	DefaultSinkTimeout = 5 * time.Second
)

// TrailWriter receives a line for each recorded event. It is implemented by
// the persisted audit trail.
type TrailWriter interface {
	Append(ctx context.Context, line string) error
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithCapacity sets the ring buffer capacity.
func WithCapacity(n int) Option {
	return func(r *Recorder) { r.capacity = n }
}

// WithSession reads role and staff ID from s when the call context carries no identity.
func WithSession(s *auditctx.Session) Option {
	return func(r *Recorder) { r.session = s }
}

// WithClassifier replaces the default escalation classifier. Nil is ignored.
func WithClassifier(c *escalation.Classifier) Option {
	return func(r *Recorder) {
		if c != nil {
			r.classifier = c
		}
	}
}

// WithTrail mirrors every event into a persisted audit trail.
func WithTrail(t TrailWriter) Option {
	return func(r *Recorder) { r.trail = t }
}

// WithMetadataFilter redacts metadata before the event is stored or sent.
// Escalation is decided on the unredacted metadata.
func WithMetadataFilter(f *MetadataFilter) Option {
	return func(r *Recorder) { r.filter = f }
}

// WithMetrics reports recorder activity to m. A nil m disables
// reporting.
func WithMetrics(m *Metrics) Option {
	return func(r *Recorder) { r.metrics = m }
}

// WithLogger sets the logger for sink and trail failures. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithSinkTimeout bounds the wait for the sink. Zero or less waits as long as
// the caller's context allows.
func WithSinkTimeout(d time.Duration) Option {
	return func(r *Recorder) { r.sinkTimeout = d }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}
