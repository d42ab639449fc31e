package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/furfolio/enginekit/pkg/async"
	"github.com/furfolio/enginekit/pkg/auditctx"
	"github.com/furfolio/enginekit/pkg/escalation"
	"github.com/furfolio/enginekit/pkg/logger"
	"github.com/furfolio/enginekit/pkg/metadata"
	"github.com/furfolio/enginekit/pkg/ringbuffer"
)

// Recorder is the logging path shared by every engine. Each engine owns one
// Recorder and therefore one ring buffer.
type Recorder struct {
	subsystem   string
	resolver    auditctx.Resolver
	session     *auditctx.Session
	classifier  *escalation.Classifier
	sink        Sink
	buffer      *ringbuffer.Buffer[Event]
	capacity    int
	trail       TrailWriter
	filter      *MetadataFilter
	metrics     *Metrics
	logger      *slog.Logger
	sinkTimeout time.Duration
	now         func() time.Time

	escalated    atomic.Uint64
	sinkFailures atomic.Uint64
}

// NewRecorder creates a recorder for subsystem that forwards to sink.
// A nil sink discards events.
func NewRecorder(subsystem string, sink Sink, opts ...Option) (*Recorder, error) {
	if subsystem == "" {
		return nil, ErrEmptySubsystem
	}
	if sink == nil {
		sink = NopSink{}
	}

	r := &Recorder{
		subsystem:   subsystem,
		classifier:  escalation.New(),
		sink:        sink,
		capacity:    DefaultCapacity,
		logger:      slog.Default(),
		sinkTimeout: DefaultSinkTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	buf, err := ringbuffer.New(r.capacity, ringbuffer.WithEvictHook(func(Event) {
		r.metrics.incEviction(r.subsystem)
	}))
	if err != nil {
		return nil, errors.Join(ErrInvalidCapacity, err)
	}
	r.buffer = buf
	r.resolver = auditctx.NewResolver(subsystem, r.session)
	r.logger = r.logger.With(logger.Component("audit.recorder"), logger.Subsystem(subsystem))

	return r, nil
}

// RecordEvent classifies the event, stamps it with the current identity,
// forwards it to the sink and appends it to the ring buffer. It never fails:
// sink and trail errors are logged and counted, and the append always happens.
func (r *Recorder) RecordEvent(ctx context.Context, text string, md metadata.Map) Event {
	escalate := r.classifier.Classify(text, md)
	id := r.resolver.Resolve(ctx)

	e := Event{
		ID:        uuid.New(),
		Timestamp: r.now(),
		Text:      text,
		Metadata:  r.filter.Filter(md),
		Role:      id.Role,
		StaffID:   id.StaffID,
		Subsystem: id.Subsystem,
		Escalate:  escalate,
	}

	r.forward(ctx, e.clone())
	r.buffer.Append(e)
	r.appendTrail(ctx, e)

	if escalate {
		r.escalated.Add(1)
	}
	r.metrics.incRecorded(r.subsystem, escalate)

	return e.clone()
}

// Record is a convenience wrapper taking loosely typed metadata.
func (r *Recorder) Record(ctx context.Context, text string, md map[string]any) Event {
	return r.RecordEvent(ctx, text, metadata.FromAny(md))
}

func (r *Recorder) forward(ctx context.Context, e Event) {
	// With a timeout configured the sink call is bounded by it alone, so an
	// already cancelled caller still gets its event forwarded.
	sctx := ctx
	if r.sinkTimeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), r.sinkTimeout)
		defer cancel()
	}

	start := time.Now()
	f := async.Go(sctx, func(ctx context.Context) error {
		return r.sink.LogEvent(ctx, e)
	})
	_, err := f.AwaitContext(sctx)
	r.metrics.observeSink(r.subsystem, time.Since(start))

	if err != nil {
		msg := "analytics sink rejected event"
		if r.sinkTimeout <= 0 && ctx.Err() != nil {
			msg = "caller cancelled, event not forwarded"
		}
		r.sinkFailures.Add(1)
		r.metrics.incSinkFailure(r.subsystem)
		r.logger.WarnContext(ctx, msg,
			logger.EventID(e.ID.String()),
			logger.EventText(e.Text),
			logger.Escalate(e.Escalate),
			logger.Error(errors.Join(ErrSinkDelivery, err)),
		)
	}
}

func (r *Recorder) appendTrail(ctx context.Context, e Event) {
	if r.trail == nil {
		return
	}
	// the caller may already be cancelled; the trail write still goes ahead
	if err := r.trail.Append(context.WithoutCancel(ctx), e.TrailLine()); err != nil {
		r.metrics.incTrailFailure(r.subsystem)
		r.logger.WarnContext(ctx, "audit trail append failed",
			logger.EventID(e.ID.String()),
			logger.Error(err),
		)
	}
}

// Subsystem returns the engine name stamped on every event.
func (r *Recorder) Subsystem() string {
	return r.subsystem
}

// Sink returns the analytics sink.
func (r *Recorder) Sink() Sink {
	return r.sink
}

// FetchRecentEvents returns copies of the buffered events, oldest first.
func (r *Recorder) FetchRecentEvents() []Event {
	return cloneEvents(r.buffer.Snapshot())
}

// Query returns copies of the buffered events matching c, oldest first.
func (r *Recorder) Query(c Criteria) []Event {
	return cloneEvents(c.Apply(r.buffer.Snapshot()))
}

// cloneEvents detaches the metadata of events from the stored records.
func cloneEvents(events []Event) []Event {
	for i := range events {
		events[i] = events[i].clone()
	}
	return events
}

// Summary describes a recorder's buffer and sink state.
type Summary struct {
	Subsystem    string `json:"subsystem"`
	Count        int    `json:"count"`
	Capacity     int    `json:"capacity"`
	Dropped      uint64 `json:"dropped"`
	Escalated    uint64 `json:"escalated"`
	SinkFailures uint64 `json:"sink_failures"`
	TestMode     bool   `json:"test_mode"`
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: %d recent events (test mode: %t)", s.Subsystem, s.Count, s.TestMode)
}

// Diagnostics returns the current summary.
func (r *Recorder) Diagnostics() Summary {
	return Summary{
		Subsystem:    r.subsystem,
		Count:        r.buffer.Len(),
		Capacity:     r.buffer.Cap(),
		Dropped:      r.buffer.Dropped(),
		Escalated:    r.escalated.Load(),
		SinkFailures: r.sinkFailures.Load(),
		TestMode:     r.sink.TestMode(),
	}
}

// DiagnosticsSummary returns a one-line summary with the number of buffered
// events and whether the sink is in test mode.
func (r *Recorder) DiagnosticsSummary() string {
	return r.Diagnostics().String()
}
