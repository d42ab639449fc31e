package telemetry

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/furfolio/enginekit/pkg/audit"
)

// MultiSink delivers every event to all of its sinks concurrently.
type MultiSink struct {
	sinks []audit.Sink
}

var _ audit.Sink = (*MultiSink)(nil)

// NewMultiSink drops nil entries and fails when none remain.
func NewMultiSink(sinks ...audit.Sink) (*MultiSink, error) {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	if len(m.sinks) == 0 {
		return nil, ErrNoSinks
	}
	return m, nil
}

// TestMode is true only when every sink is in test mode.
func (m *MultiSink) TestMode() bool {
	for _, s := range m.sinks {
		if !s.TestMode() {
			return false
		}
	}
	return true
}

// LogEvent waits for all sinks and joins their errors. One failing sink
// does not cancel the others.
func (m *MultiSink) LogEvent(ctx context.Context, e audit.Event) error {
	errs := make([]error, len(m.sinks))
	var g errgroup.Group
	for i, s := range m.sinks {
		g.Go(func() error {
			errs[i] = s.LogEvent(ctx, e)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (m *MultiSink) Len() int { return len(m.sinks) }
