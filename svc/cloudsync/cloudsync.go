package cloudsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/furfolio/enginekit/pkg/async"
	"github.com/furfolio/enginekit/pkg/audit"
	"github.com/furfolio/enginekit/pkg/metadata"
)

// Subsystem is the audit subsystem name of the cloud sync engine.
const Subsystem = "CloudKitSyncEngine"

// DefaultBatchSize is the number of changes applied concurrently.
const DefaultBatchSize = 50

// Kind is the operation a change performs on the remote record.
type Kind string

const (
	KindUpsert Kind = "upsert"
	KindDelete Kind = "delete"
)

// Change is one local modification waiting to be pushed.
type Change struct {
	ID         string
	Kind       Kind
	RecordType string // e.g. "Appointment", "Owner"
	RecordID   string
	Version    int64
}

func (c Change) key() string { return c.RecordType + "/" + c.RecordID }

func (c Change) validate() error {
	var problems []string
	if strings.TrimSpace(c.ID) == "" {
		problems = append(problems, "missing id")
	}
	if strings.TrimSpace(c.RecordType) == "" || strings.TrimSpace(c.RecordID) == "" {
		problems = append(problems, "missing record")
	}
	if c.Kind != KindUpsert && c.Kind != KindDelete {
		problems = append(problems, fmt.Sprintf("unknown kind %q", c.Kind))
	}
	if len(problems) > 0 {
		return errors.Join(ErrInvalidChange, errors.New(strings.Join(problems, ", ")))
	}
	return nil
}

func (c Change) metadata() metadata.Map {
	return metadata.Map{
		"change":  metadata.String(c.ID),
		"kind":    metadata.String(string(c.Kind)),
		"record":  metadata.String(c.key()),
		"version": metadata.Number(float64(c.Version)),
	}
}

// SyncReport summarises one Sync call.
type SyncReport struct {
	Total     int  `json:"total"`
	Applied   int  `json:"applied"`
	Failed    int  `json:"failed"`
	Conflicts int  `json:"conflicts"`
	Batches   int  `json:"batches"`
	Aborted   bool `json:"aborted"`
}

// Engine pushes local changes to a Remote.
type Engine struct {
	*audit.Recorder
	remote    Remote
	batchSize int
}

type options struct {
	batchSize int
	recorder  []audit.Option
}

// Option configures the cloud sync engine.
type Option func(*options)

// WithBatchSize sets how many changes are applied concurrently.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithRecorderOptions passes options to the underlying audit.Recorder.
func WithRecorderOptions(opts ...audit.Option) Option {
	return func(o *options) { o.recorder = append(o.recorder, opts...) }
}

// New returns an engine that pushes changes to remote in batches of
// DefaultBatchSize unless configured otherwise. A nil remote is rejected
// with ErrNoRemote.
func New(sink audit.Sink, remote Remote, opts ...Option) (*Engine, error) {
	if remote == nil {
		return nil, ErrNoRemote
	}
	o := options{batchSize: DefaultBatchSize}
	for _, opt := range opts {
		opt(&o)
	}
	rec, err := audit.NewRecorder(Subsystem, sink, o.recorder...)
	if err != nil {
		return nil, err
	}
	return &Engine{Recorder: rec, remote: remote, batchSize: o.batchSize}, nil
}

type outcome struct {
	change Change
	err    error
}

// Sync applies changes in batches. Changes within a batch are applied
// concurrently; batches run in order. Invalid changes, conflicts and other
// per-change failures are recorded and counted without stopping the sync.
// An unavailable remote or a cancelled context stops it after the current
// batch and is returned as an error together with the partial report.
func (e *Engine) Sync(ctx context.Context, changes []Change) (SyncReport, error) {
	report := SyncReport{Total: len(changes)}
	e.RecordEvent(ctx, "SyncStarted", metadata.Map{
		"changes":    metadata.Int(len(changes)),
		"batch_size": metadata.Int(e.batchSize),
	})

	for start := 0; start < len(changes); start += e.batchSize {
		if err := ctx.Err(); err != nil {
			return e.abort(ctx, report, "cancelled", err)
		}

		batch := changes[start:min(start+e.batchSize, len(changes))]
		report.Batches++

		var applied, failed, conflicts int
		unavailable := false
		for _, out := range e.applyBatch(ctx, batch) {
			switch {
			case out.err == nil:
				applied++
			case errors.Is(out.err, ErrConflict):
				conflicts++
				e.RecordEvent(ctx, "ChangeConflict", out.change.metadata())
			default:
				if errors.Is(out.err, ErrRemoteUnavailable) {
					unavailable = true
				}
				failed++
				md := out.change.metadata()
				md["error"] = metadata.String(out.err.Error())
				e.RecordEvent(ctx, "ChangeFailed", md)
			}
		}

		report.Applied += applied
		report.Failed += failed
		report.Conflicts += conflicts
		e.RecordEvent(ctx, "BatchSynced", metadata.Map{
			"batch":     metadata.Int(report.Batches),
			"size":      metadata.Int(len(batch)),
			"applied":   metadata.Int(applied),
			"failed":    metadata.Int(failed),
			"conflicts": metadata.Int(conflicts),
		})

		if unavailable {
			return e.abort(ctx, report, "remote unavailable", ErrRemoteUnavailable)
		}
		if err := ctx.Err(); err != nil {
			return e.abort(ctx, report, "cancelled", err)
		}
	}

	e.RecordEvent(ctx, "SyncCompleted", reportMetadata(report))
	return report, nil
}

func (e *Engine) applyBatch(ctx context.Context, batch []Change) []outcome {
	futures := make([]*async.Future[outcome], len(batch))
	for i, c := range batch {
		futures[i] = async.Async(ctx, c, func(ctx context.Context, c Change) (outcome, error) {
			if err := c.validate(); err != nil {
				return outcome{change: c, err: err}, nil
			}
			return outcome{change: c, err: e.remote.Apply(ctx, c)}, nil
		})
	}

	// Only a panic or an already cancelled context surface as errors here;
	// those changes come back as zero outcomes.
	results, _ := async.WaitAll(futures...)
	for i := range results {
		if results[i].change.ID == "" && results[i].err == nil {
			_, err := futures[i].Await()
			if err == nil {
				err = ErrInvalidChange
			}
			results[i] = outcome{change: batch[i], err: err}
		}
	}
	return results
}

func (e *Engine) abort(ctx context.Context, report SyncReport, reason string, cause error) (SyncReport, error) {
	report.Aborted = true
	md := reportMetadata(report)
	md["reason"] = metadata.String(reason)
	e.RecordEvent(ctx, "SyncAborted", md)
	return report, cause
}

func reportMetadata(r SyncReport) metadata.Map {
	return metadata.Map{
		"total":     metadata.Int(r.Total),
		"applied":   metadata.Int(r.Applied),
		"failed":    metadata.Int(r.Failed),
		"conflicts": metadata.Int(r.Conflicts),
		"batches":   metadata.Int(r.Batches),
	}
}
