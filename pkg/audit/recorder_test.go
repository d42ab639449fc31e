package audit_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/furfolio/enginekit/pkg/audit"
	"github.com/furfolio/enginekit/pkg/auditctx"
	"github.com/furfolio/enginekit/pkg/escalation"
	"github.com/furfolio/enginekit/pkg/metadata"
)

// MockSink implements audit.Sink for testing.
type MockSink struct {
	mock.Mock
}

func (m *MockSink) TestMode() bool {
	return m.Called().Bool(0)
}

func (m *MockSink) LogEvent(ctx context.Context, e audit.Event) error {
	return m.Called(ctx, e).Error(0)
}

// MockTrail implements audit.TrailWriter for testing.
type MockTrail struct {
	mock.Mock
}

func (m *MockTrail) Append(ctx context.Context, line string) error {
	return m.Called(ctx, line).Error(0)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newRecorder(t *testing.T, sink audit.Sink, opts ...audit.Option) *audit.Recorder {
	t.Helper()
	opts = append([]audit.Option{audit.WithLogger(quietLogger())}, opts...)
	r, err := audit.NewRecorder("TestEngine", sink, opts...)
	require.NoError(t, err)
	return r
}

func TestNewRecorder(t *testing.T) {
	t.Parallel()

	t.Run("requires subsystem", func(t *testing.T) {
		t.Parallel()
		r, err := audit.NewRecorder("", audit.NopSink{})
		require.ErrorIs(t, err, audit.ErrEmptySubsystem)
		assert.Nil(t, r)
	})

	t.Run("rejects invalid capacity", func(t *testing.T) {
		t.Parallel()
		_, err := audit.NewRecorder("X", audit.NopSink{}, audit.WithCapacity(0))
		require.ErrorIs(t, err, audit.ErrInvalidCapacity)
	})

	t.Run("nil sink discards", func(t *testing.T) {
		t.Parallel()
		r, err := audit.NewRecorder("X", nil)
		require.NoError(t, err)
		r.RecordEvent(context.Background(), "event", nil)
		assert.Len(t, r.FetchRecentEvents(), 1)
		assert.False(t, r.Sink().TestMode())
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		r := newRecorder(t, audit.NopSink{})
		assert.Equal(t, "TestEngine", r.Subsystem())
		assert.Equal(t, audit.DefaultCapacity, r.Diagnostics().Capacity)
	})
}

func TestRecorder_RecordEvent(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	session := auditctx.NewSession()
	session.Login("groomer", "staff-7")

	sink := &MockSink{}
	sink.On("LogEvent", mock.Anything, mock.MatchedBy(func(e audit.Event) bool {
		return e.Text == "BadgeAwarded" && e.Role == "groomer" && e.Subsystem == "TestEngine"
	})).Return(nil).Once()

	r := newRecorder(t, sink,
		audit.WithSession(session),
		audit.WithClock(func() time.Time { return fixed }),
	)

	md := metadata.Map{"badge": metadata.String("gold")}
	e := r.RecordEvent(context.Background(), "BadgeAwarded", md)

	assert.NotEqual(t, e.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, fixed, e.Timestamp)
	assert.Equal(t, "BadgeAwarded", e.Text)
	assert.Equal(t, "groomer", e.Role)
	assert.Equal(t, "staff-7", e.StaffID)
	assert.Equal(t, "TestEngine", e.Subsystem)
	assert.False(t, e.Escalate)
	assert.Equal(t, "gold", e.Metadata["badge"].String())

	events := r.FetchRecentEvents()
	require.Len(t, events, 1)
	assert.Equal(t, e, events[0])
	sink.AssertExpectations(t)
}

func TestRecorder_ContextIdentityOverridesSession(t *testing.T) {
	t.Parallel()

	session := auditctx.NewSession()
	session.Login("groomer", "staff-7")
	r := newRecorder(t, audit.NopSink{}, audit.WithSession(session))

	ctx := auditctx.WithIdentity(context.Background(), auditctx.Identity{Role: "owner", StaffID: "o-1"})
	e := r.RecordEvent(ctx, "event", nil)

	assert.Equal(t, "owner", e.Role)
	assert.Equal(t, "o-1", e.StaffID)
	assert.Equal(t, "TestEngine", e.Subsystem)
}

func TestRecorder_Escalation(t *testing.T) {
	t.Parallel()

	r := newRecorder(t, audit.NopSink{})
	ctx := context.Background()

	assert.True(t, r.RecordEvent(ctx, "User attempted to DELETE record", nil).Escalate)
	assert.True(t, r.RecordEvent(ctx, "normal event", metadata.Map{"note": metadata.String("this is CRITICAL")}).Escalate)
	assert.False(t, r.RecordEvent(ctx, "normal event", nil).Escalate)

	custom := newRecorder(t, audit.NopSink{}, audit.WithClassifier(escalation.New(escalation.WithTerms("bite"))))
	assert.True(t, custom.RecordEvent(ctx, "dog bite", nil).Escalate)
	assert.False(t, custom.RecordEvent(ctx, "delete", nil).Escalate)

	assert.Equal(t, uint64(2), r.Diagnostics().Escalated)
	assert.Len(t, r.Query(audit.Criteria{EscalatedOnly: true}), 2)
}

func TestRecorder_CapacityAndFIFO(t *testing.T) {
	t.Parallel()

	const capacity, n = 20, 35
	r := newRecorder(t, audit.NopSink{}, audit.WithCapacity(capacity))
	for i := 1; i <= n; i++ {
		r.RecordEvent(context.Background(), fmt.Sprintf("event-%d", i), nil)
	}

	events := r.FetchRecentEvents()
	require.Len(t, events, capacity)
	for i, e := range events {
		assert.Equal(t, fmt.Sprintf("event-%d", n-capacity+1+i), e.Text)
	}

	d := r.Diagnostics()
	assert.Equal(t, capacity, d.Count)
	assert.Equal(t, uint64(n-capacity), d.Dropped)
}

func TestRecorder_SinkIndependence(t *testing.T) {
	t.Parallel()

	t.Run("failing sink", func(t *testing.T) {
		t.Parallel()
		sink := audit.SinkFunc(func(context.Context, audit.Event) error {
			return errors.New("telemetry backend down")
		})
		r := newRecorder(t, sink)

		e := r.RecordEvent(context.Background(), "event", nil)
		events := r.FetchRecentEvents()
		require.Len(t, events, 1)
		assert.Equal(t, e.ID, events[0].ID)
		assert.Equal(t, uint64(1), r.Diagnostics().SinkFailures)
	})

	t.Run("panicking sink", func(t *testing.T) {
		t.Parallel()
		sink := audit.SinkFunc(func(context.Context, audit.Event) error {
			panic("boom")
		})
		r := newRecorder(t, sink)

		assert.NotPanics(t, func() { r.RecordEvent(context.Background(), "event", nil) })
		assert.Len(t, r.FetchRecentEvents(), 1)
		assert.Equal(t, uint64(1), r.Diagnostics().SinkFailures)
	})

	t.Run("slow sink is bounded by timeout", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		defer close(release)
		sink := audit.SinkFunc(func(ctx context.Context, _ audit.Event) error {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return ctx.Err()
		})
		r := newRecorder(t, sink, audit.WithSinkTimeout(20*time.Millisecond))

		start := time.Now()
		r.RecordEvent(context.Background(), "event", nil)
		assert.Less(t, time.Since(start), 2*time.Second)
		assert.Len(t, r.FetchRecentEvents(), 1)
		assert.Equal(t, uint64(1), r.Diagnostics().SinkFailures)
	})

	t.Run("cancelled caller context still appends", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		sink := &MockSink{}
		sink.On("LogEvent", mock.Anything, mock.MatchedBy(func(e audit.Event) bool {
			return e.Text == "event"
		})).Return(nil).Once()

		r := newRecorder(t, sink)
		r.RecordEvent(ctx, "event", nil)
		assert.Len(t, r.FetchRecentEvents(), 1)
		assert.Zero(t, r.Diagnostics().SinkFailures, "sink still receives the event")
		sink.AssertExpectations(t)
	})

	t.Run("cancelled caller without sink timeout is not forwarded", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var buf bytes.Buffer
		sink := &MockSink{}
		r := newRecorder(t, sink, audit.WithSinkTimeout(0), audit.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
		r.RecordEvent(ctx, "event", nil)

		assert.Len(t, r.FetchRecentEvents(), 1)
		assert.Equal(t, uint64(1), r.Diagnostics().SinkFailures)
		assert.Contains(t, buf.String(), "caller cancelled, event not forwarded")
		sink.AssertNotCalled(t, "LogEvent", mock.Anything, mock.Anything)
	})
}

func TestRecorder_ConcurrentRecord(t *testing.T) {
	t.Parallel()

	const k = 100
	r := newRecorder(t, audit.NopSink{}, audit.WithCapacity(k))

	var wg sync.WaitGroup
	for i := range k {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RecordEvent(context.Background(), fmt.Sprintf("event-%d", i), nil)
		}()
	}
	wg.Wait()

	events := r.FetchRecentEvents()
	require.Len(t, events, k)

	texts := make(map[string]struct{}, k)
	for _, e := range events {
		texts[e.Text] = struct{}{}
	}
	assert.Len(t, texts, k)
}

func TestRecorder_MetadataIsCopied(t *testing.T) {
	t.Parallel()

	t.Run("input map", func(t *testing.T) {
		t.Parallel()
		r := newRecorder(t, audit.NopSink{})
		md := metadata.Map{"k": metadata.String("v")}
		r.RecordEvent(context.Background(), "event", md)

		md["k"] = metadata.String("changed")
		got := r.FetchRecentEvents()[0].MetadataCopy()
		got["extra"] = metadata.Bool(true)

		stored := r.FetchRecentEvents()[0].Metadata
		assert.Equal(t, "v", stored["k"].String())
		assert.NotContains(t, stored, "extra")
	})

	t.Run("returned event and snapshots", func(t *testing.T) {
		t.Parallel()
		r := newRecorder(t, audit.NopSink{})
		ret := r.RecordEvent(context.Background(), "normal event", metadata.Map{"note": metadata.String("ok")})

		ret.Metadata["note"] = metadata.String("from returned event")
		r.FetchRecentEvents()[0].Metadata["injected"] = metadata.String("critical")
		r.Query(audit.Criteria{})[0].Metadata["note"] = metadata.String("from query")

		stored := r.FetchRecentEvents()[0]
		assert.Equal(t, "[note:ok]", stored.Metadata.String())
		assert.False(t, stored.Escalate)
	})

	t.Run("sink copy", func(t *testing.T) {
		t.Parallel()
		sink := audit.SinkFunc(func(_ context.Context, e audit.Event) error {
			e.Metadata["injected"] = metadata.String("delete")
			return nil
		})
		r := newRecorder(t, sink)
		r.RecordEvent(context.Background(), "event", metadata.Map{"k": metadata.String("v")})

		assert.Equal(t, "[k:v]", r.FetchRecentEvents()[0].Metadata.String())
	})
}

func TestRecorder_Trail(t *testing.T) {
	t.Parallel()

	t.Run("mirrors each event", func(t *testing.T) {
		t.Parallel()
		trail := &MockTrail{}
		trail.On("Append", mock.Anything, mock.MatchedBy(func(line string) bool {
			return bytes.Contains([]byte(line), []byte("| TestEngine | - | - | BadgeRevoked"))
		})).Return(nil).Once()

		r := newRecorder(t, audit.NopSink{}, audit.WithTrail(trail))
		r.RecordEvent(context.Background(), "BadgeRevoked", nil)
		trail.AssertExpectations(t)
	})

	t.Run("trail failure does not affect buffer", func(t *testing.T) {
		t.Parallel()
		trail := &MockTrail{}
		trail.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		r := newRecorder(t, audit.NopSink{}, audit.WithTrail(trail))
		r.RecordEvent(context.Background(), "event", nil)
		assert.Len(t, r.FetchRecentEvents(), 1)
	})
}

func TestRecorder_MetadataFilter(t *testing.T) {
	t.Parallel()

	r := newRecorder(t, audit.NopSink{}, audit.WithMetadataFilter(audit.NewMetadataFilter()))
	e := r.RecordEvent(context.Background(), "CampaignSent", metadata.Map{
		"password": metadata.String("delete-me"),
		"campaign": metadata.String("spring"),
	})

	assert.NotContains(t, e.Metadata, "password")
	assert.Equal(t, "spring", e.Metadata["campaign"].String())
	// classification sees the raw value
	assert.True(t, e.Escalate)
}

func TestRecorder_NilMetrics(t *testing.T) {
	t.Parallel()

	r := newRecorder(t, audit.SinkFunc(func(context.Context, audit.Event) error { return errors.New("down") }),
		audit.WithMetrics(nil), audit.WithCapacity(1))
	assert.NotPanics(t, func() {
		r.RecordEvent(context.Background(), "Started", nil)
		r.RecordEvent(context.Background(), "Finished", nil)
	})
	require.Len(t, r.FetchRecentEvents(), 1)
}

func TestRecorder_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := audit.NewMetrics(reg)

	failing := audit.SinkFunc(func(context.Context, audit.Event) error { return errors.New("down") })
	r := newRecorder(t, failing, audit.WithMetrics(m), audit.WithCapacity(2))

	ctx := context.Background()
	r.RecordEvent(ctx, "one", nil)
	r.RecordEvent(ctx, "two", nil)
	r.RecordEvent(ctx, "critical three", nil)

	assert.InDelta(t, 2, testutil.ToFloat64(m.EventsRecorded.WithLabelValues("TestEngine", "false")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.EventsRecorded.WithLabelValues("TestEngine", "true")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.SinkFailures.WithLabelValues("TestEngine")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.BufferEvictions.WithLabelValues("TestEngine")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.SinkLatency))
}

func TestRecorder_DiagnosticsSummary(t *testing.T) {
	t.Parallel()

	r := newRecorder(t, audit.NewNullSink(true, audit.WithWriter(&bytes.Buffer{})))
	assert.Equal(t, "TestEngine: 0 recent events (test mode: true)", r.DiagnosticsSummary())

	r.RecordEvent(context.Background(), "a", nil)
	r.RecordEvent(context.Background(), "b", nil)
	assert.Equal(t, "TestEngine: 2 recent events (test mode: true)", r.DiagnosticsSummary())

	prod := newRecorder(t, audit.NopSink{})
	assert.Equal(t, "TestEngine: 0 recent events (test mode: false)", prod.DiagnosticsSummary())
}

func TestRecorder_Record(t *testing.T) {
	t.Parallel()

	r := newRecorder(t, audit.NopSink{})
	e := r.Record(context.Background(), "VisitLogged", map[string]any{"visits": 3})
	assert.Equal(t, "3", e.Metadata["visits"].String())
}
