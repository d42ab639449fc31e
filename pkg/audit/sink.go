package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// Sink is an analytics endpoint that receives every recorded event.
// Delivery is best effort: the recorder logs and counts a returned error but
// never passes it on to its caller.
type Sink interface {
	// TestMode reports whether the sink is restricted to local output.
	TestMode() bool
	LogEvent(ctx context.Context, e Event) error
}

// SinkFunc adapts a function to the Sink interface. It is never in test mode.
type SinkFunc func(ctx context.Context, e Event) error

func (f SinkFunc) TestMode() bool { return false }

func (f SinkFunc) LogEvent(ctx context.Context, e Event) error { return f(ctx, e) }

// NopSink discards every event.
type NopSink struct{}

func (NopSink) TestMode() bool { return false }

func (NopSink) LogEvent(context.Context, Event) error { return nil }

// NullSink is the sink used by tests and previews. In test mode it prints
// one line per event to its writer and otherwise it does nothing.
type NullSink struct {
	mu       sync.Mutex
	out      io.Writer
	testMode bool
}

// NullSinkOption configures a NullSink.
type NullSinkOption func(*NullSink)

// WithWriter redirects the console line. Nil writers are ignored.
func WithWriter(w io.Writer) NullSinkOption {
	return func(s *NullSink) {
		if w != nil {
			s.out = w
		}
	}
}

// NewNullSink returns a NullSink writing to stdout.
func NewNullSink(testMode bool, opts ...NullSinkOption) *NullSink {
	s := &NullSink{out: os.Stdout, testMode: testMode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *NullSink) TestMode() bool { return s.testMode }

// LogEvent writes a single line holding the text, the metadata summary and
// all audit fields.
func (s *NullSink) LogEvent(_ context.Context, e Event) error {
	if !s.testMode {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.out, FormatConsoleLine(e))
	return err
}

// FormatConsoleLine renders an event for console output.
func FormatConsoleLine(e Event) string {
	return fmt.Sprintf("[TEST] %s | metadata=%s | role=%s | staffID=%s | context=%s | escalate=%t",
		e.Text,
		e.Metadata.String(),
		orDash(e.Role),
		orDash(e.StaffID),
		orDash(e.Subsystem),
		e.Escalate,
	)
}
