package cloudsync_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furfolio/enginekit/pkg/audit"
	"github.com/furfolio/enginekit/svc/cloudsync"
)

func newEngine(t *testing.T, remote cloudsync.Remote, opts ...cloudsync.Option) *cloudsync.Engine {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	opts = append([]cloudsync.Option{cloudsync.WithRecorderOptions(audit.WithLogger(quiet), audit.WithCapacity(100))}, opts...)
	e, err := cloudsync.New(nil, remote, opts...)
	require.NoError(t, err)
	return e
}

func upserts(n int) []cloudsync.Change {
	out := make([]cloudsync.Change, n)
	for i := range out {
		out[i] = cloudsync.Change{
			ID:         fmt.Sprintf("c-%d", i),
			Kind:       cloudsync.KindUpsert,
			RecordType: "Appointment",
			RecordID:   fmt.Sprintf("a-%d", i),
			Version:    1,
		}
	}
	return out
}

func texts(events []audit.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Text
	}
	return out
}

func TestNew_RequiresRemote(t *testing.T) {
	t.Parallel()
	_, err := cloudsync.New(nil, nil)
	require.ErrorIs(t, err, cloudsync.ErrNoRemote)
}

func TestSync_Batches(t *testing.T) {
	t.Parallel()

	remote := cloudsync.NewMemoryRemote()
	e := newEngine(t, remote, cloudsync.WithBatchSize(4))

	report, err := e.Sync(context.Background(), upserts(10))
	require.NoError(t, err)

	assert.Equal(t, cloudsync.SyncReport{Total: 10, Applied: 10, Batches: 3}, report)
	assert.Equal(t, 10, remote.Len())
	assert.Equal(t, []string{"SyncStarted", "BatchSynced", "BatchSynced", "BatchSynced", "SyncCompleted"}, texts(e.FetchRecentEvents()))

	last := e.Query(audit.Criteria{Contains: "BatchSynced", Limit: 1})
	require.Len(t, last, 1)
	assert.Equal(t, "2", last[0].Metadata["size"].String())
}

func TestSync_ConflictsAndFailures(t *testing.T) {
	t.Parallel()

	remote := cloudsync.NewMemoryRemote()
	e := newEngine(t, remote)
	ctx := context.Background()

	_, err := e.Sync(ctx, []cloudsync.Change{
		{ID: "c-1", Kind: cloudsync.KindUpsert, RecordType: "Owner", RecordID: "o-1", Version: 3},
		{ID: "c-2", Kind: cloudsync.KindUpsert, RecordType: "Owner", RecordID: "o-2", Version: 1},
	})
	require.NoError(t, err)

	report, err := e.Sync(ctx, []cloudsync.Change{
		{ID: "c-3", Kind: cloudsync.KindUpsert, RecordType: "Owner", RecordID: "o-1", Version: 2},
		{ID: "c-4", Kind: cloudsync.KindDelete, RecordType: "Owner", RecordID: "o-2", Version: 2},
		{ID: "c-5", Kind: "merge", RecordType: "Owner", RecordID: "o-3"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, 1, report.Conflicts)
	assert.Equal(t, 1, report.Failed)
	assert.False(t, report.Aborted)

	v, ok := remote.Version("Owner", "o-1")
	require.True(t, ok)
	assert.Equal(t, int64(3), v)
	_, ok = remote.Version("Owner", "o-2")
	assert.False(t, ok)

	conflict := e.Query(audit.Criteria{Contains: "ChangeConflict"})
	require.Len(t, conflict, 1)
	assert.Equal(t, "c-3", conflict[0].Metadata["change"].String())
	assert.False(t, conflict[0].Escalate)

	failed := e.Query(audit.Criteria{Contains: "ChangeFailed"})
	require.Len(t, failed, 1)
	assert.Equal(t, "c-5", failed[0].Metadata["change"].String())
	assert.Contains(t, failed[0].Metadata["error"].String(), "unknown kind")
}

func TestSync_FailedDeleteEscalates(t *testing.T) {
	t.Parallel()

	e := newEngine(t, cloudsync.RemoteFunc(func(context.Context, cloudsync.Change) error {
		return errors.New("quota exceeded")
	}))

	report, err := e.Sync(context.Background(), []cloudsync.Change{
		{ID: "c-1", Kind: cloudsync.KindDelete, RecordType: "Pet", RecordID: "p-1", Version: 1},
		{ID: "c-2", Kind: cloudsync.KindUpsert, RecordType: "Pet", RecordID: "p-2", Version: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Failed)

	escalated := e.Query(audit.Criteria{EscalatedOnly: true})
	require.Len(t, escalated, 1)
	assert.Equal(t, "ChangeFailed", escalated[0].Text)
	assert.Equal(t, "c-1", escalated[0].Metadata["change"].String())
	assert.Equal(t, uint64(1), e.Diagnostics().Escalated)
}

func TestSync_RemoteUnavailableAborts(t *testing.T) {
	t.Parallel()

	remote := cloudsync.NewMemoryRemote()
	var calls atomic.Int32
	flaky := cloudsync.RemoteFunc(func(ctx context.Context, c cloudsync.Change) error {
		if calls.Add(1) > 2 {
			remote.SetAvailable(false)
		}
		return remote.Apply(ctx, c)
	})

	e := newEngine(t, flaky, cloudsync.WithBatchSize(2))
	report, err := e.Sync(context.Background(), upserts(6))
	require.ErrorIs(t, err, cloudsync.ErrRemoteUnavailable)

	assert.True(t, report.Aborted)
	assert.Equal(t, 2, report.Batches)
	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, 2, report.Failed)

	events := texts(e.FetchRecentEvents())
	assert.Equal(t, "SyncAborted", events[len(events)-1])
	assert.NotContains(t, events, "SyncCompleted")
}

func TestSync_CancelledContext(t *testing.T) {
	t.Parallel()

	e := newEngine(t, cloudsync.NewMemoryRemote())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := e.Sync(ctx, upserts(3))
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, report.Aborted)
	assert.Zero(t, report.Batches)

	assert.Equal(t, []string{"SyncStarted", "SyncAborted"}, texts(e.FetchRecentEvents()),
		"cancelled contexts still reach the buffer")
}

func TestSync_CancelledDuringLastBatch(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e := newEngine(t, cloudsync.RemoteFunc(func(ctx context.Context, _ cloudsync.Change) error {
		cancel()
		return ctx.Err()
	}))

	report, err := e.Sync(ctx, upserts(1))
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, report.Aborted)
	assert.Equal(t, 1, report.Batches)
	assert.Equal(t, 1, report.Failed)

	events := texts(e.FetchRecentEvents())
	assert.Equal(t, "SyncAborted", events[len(events)-1])
	assert.NotContains(t, events, "SyncCompleted")
}

func TestSync_PanickingRemote(t *testing.T) {
	t.Parallel()

	e := newEngine(t, cloudsync.RemoteFunc(func(_ context.Context, c cloudsync.Change) error {
		if c.ID == "c-1" {
			panic("boom")
		}
		return nil
	}))

	report, err := e.Sync(context.Background(), upserts(3))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, 1, report.Failed)

	failed := e.Query(audit.Criteria{Contains: "ChangeFailed"})
	require.Len(t, failed, 1)
	assert.Equal(t, "c-1", failed[0].Metadata["change"].String())
}

func TestSync_Empty(t *testing.T) {
	t.Parallel()

	e := newEngine(t, cloudsync.NewMemoryRemote())
	report, err := e.Sync(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, cloudsync.SyncReport{}, report)
	assert.Equal(t, []string{"SyncStarted", "SyncCompleted"}, texts(e.FetchRecentEvents()))
}
