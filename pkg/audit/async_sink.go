package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/furfolio/enginekit/pkg/logger"
)

// BatchSink accepts events in bulk. Remote telemetry backends implement it
// to cut per-event round trips.
type BatchSink interface {
	Sink
	LogBatch(ctx context.Context, events []Event) error
}

// AsyncOptions tunes the batching behaviour of an AsyncSink.
type AsyncOptions struct {
	BufferSize   int           // events queued before LogEvent reports ErrBufferFull
	BatchSize    int           // events per LogBatch call
	BatchTimeout time.Duration // longest a partial batch waits
	SinkTimeout  time.Duration // bound on each LogBatch call
	Logger       *slog.Logger
}

// AsyncSink queues events and hands them to a BatchSink from a background
// worker. LogEvent returns as soon as the event is queued, so a slow backend
// never holds up RecordEvent.
type AsyncSink struct {
	next   BatchSink
	queue  chan Event
	done   chan struct{}
	mu     sync.RWMutex // guards closed; held by LogEvent across its send
	closed bool
	wg     sync.WaitGroup
	opts   AsyncOptions
}

// NewAsyncSink starts the worker. Call Close to flush queued events.
func NewAsyncSink(next BatchSink, opts AsyncOptions) *AsyncSink {
	if next == nil {
		panic("audit: batch sink cannot be nil")
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = 100 * time.Millisecond
	}
	if opts.SinkTimeout <= 0 {
		opts.SinkTimeout = DefaultSinkTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &AsyncSink{
		next:  next,
		queue: make(chan Event, opts.BufferSize),
		done:  make(chan struct{}),
		opts:  opts,
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

// TestMode mirrors the wrapped sink.
func (s *AsyncSink) TestMode() bool {
	return s.next.TestMode()
}

// LogEvent queues e. A full queue is reported as ErrBufferFull rather than
// blocking the caller.
func (s *AsyncSink) LogEvent(ctx context.Context, e Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSinkClosed
	}

	select {
	case s.queue <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

func (s *AsyncSink) worker() {
	defer s.wg.Done()

	batch := make([]Event, 0, s.opts.BatchSize)
	ticker := time.NewTicker(s.opts.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.SinkTimeout)
		defer cancel()

		if err := s.next.LogBatch(ctx, batch); err != nil {
			s.opts.Logger.WarnContext(ctx, "batch sink rejected events",
				logger.Component("audit.async_sink"),
				logger.Count(len(batch)),
				logger.Error(err),
			)
		}
		clear(batch)
		batch = batch[:0]
	}

	for {
		select {
		case e := <-s.queue:
			batch = append(batch, e)
			if len(batch) >= s.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for {
				select {
				case e := <-s.queue:
					batch = append(batch, e)
					if len(batch) >= s.opts.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close stops accepting events and waits for queued ones to be flushed or
// for ctx to end. Every LogEvent that returned nil before Close is flushed.
func (s *AsyncSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()

	flushed := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(flushed)
	}()

	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
