package badge

import (
	"github.com/furfolio/enginekit/pkg/audit"
	"github.com/furfolio/enginekit/pkg/trail"
)

type options struct {
	recorder []audit.Option
	trail    *trail.Trail
	catalog  []Badge
}

// Option configures the badge engine.
type Option func(*options)

// WithRecorderOptions passes options to the underlying audit.Recorder.
func WithRecorderOptions(opts ...audit.Option) Option {
	return func(o *options) { o.recorder = append(o.recorder, opts...) }
}

// WithTrail persists the audit trail through t.
func WithTrail(t *trail.Trail) Option {
	return func(o *options) { o.trail = t }
}

// WithCatalog replaces the default badge catalog.
func WithCatalog(badges []Badge) Option {
	return func(o *options) {
		if len(badges) > 0 {
			o.catalog = badges
		}
	}
}
