package audit

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors shared by every recorder in a process.
// All series are labelled by subsystem.
type Metrics struct {
	EventsRecorded  *prometheus.CounterVec
	SinkFailures    *prometheus.CounterVec
	BufferEvictions *prometheus.CounterVec
	TrailFailures   *prometheus.CounterVec
	SinkLatency     *prometheus.HistogramVec
}

// NewMetrics registers the recorder collectors with reg. A nil reg uses the
// default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		EventsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "furfolio_engine_events_recorded_total",
			Help: "Total number of engine events appended to the ring buffer",
		}, []string{"subsystem", "escalate"}),
		SinkFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "furfolio_engine_sink_failures_total",
			Help: "Total number of events the analytics sink failed to accept",
		}, []string{"subsystem"}),
		BufferEvictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "furfolio_engine_buffer_evictions_total",
			Help: "Total number of events evicted from a full ring buffer",
		}, []string{"subsystem"}),
		TrailFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "furfolio_engine_trail_failures_total",
			Help: "Total number of audit trail appends that failed",
		}, []string{"subsystem"}),
		SinkLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "furfolio_engine_sink_latency_seconds",
			Help:    "Time spent waiting for the analytics sink",
			Buckets: prometheus.DefBuckets,
		}, []string{"subsystem"}),
	}
}

func (m *Metrics) incRecorded(subsystem string, escalate bool) {
	if m == nil {
		return
	}
	m.EventsRecorded.WithLabelValues(subsystem, strconv.FormatBool(escalate)).Inc()
}

func (m *Metrics) incSinkFailure(subsystem string) {
	if m == nil {
		return
	}
	m.SinkFailures.WithLabelValues(subsystem).Inc()
}

func (m *Metrics) incEviction(subsystem string) {
	if m == nil {
		return
	}
	m.BufferEvictions.WithLabelValues(subsystem).Inc()
}

func (m *Metrics) incTrailFailure(subsystem string) {
	if m == nil {
		return
	}
	m.TrailFailures.WithLabelValues(subsystem).Inc()
}

func (m *Metrics) observeSink(subsystem string, d time.Duration) {
	if m == nil {
		return
	}
	m.SinkLatency.WithLabelValues(subsystem).Observe(d.Seconds())
}
