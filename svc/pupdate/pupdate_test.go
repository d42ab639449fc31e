package pupdate_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furfolio/enginekit/pkg/audit"
	"github.com/furfolio/enginekit/svc/pupdate"
)

func newEngine(t *testing.T, sink audit.Sink, opts ...pupdate.Option) *pupdate.Engine {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	opts = append([]pupdate.Option{pupdate.WithRecorderOptions(audit.WithLogger(quiet), audit.WithCapacity(20))}, opts...)
	e, err := pupdate.New(sink, opts...)
	require.NoError(t, err)
	return e
}

func photo() pupdate.Photo {
	return pupdate.Photo{ID: "p-1", PetID: "pet-42", Data: []byte("\x89PNG fake image"), ContentType: "image/png"}
}

func TestAnalyzePhoto_EndToEnd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		anomalies []string
		want      []string
	}{
		{"clean photo", nil, []string{"AnalysisStarted", "AnalysisCompleted"}},
		{"with anomaly", []string{"matted_coat"}, []string{"AnalysisStarted", "AnomalyReported", "AnalysisCompleted"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			e := newEngine(t, audit.NewNullSink(true, audit.WithWriter(&out)),
				pupdate.WithAnalyzer(pupdate.StubAnalyzer{Anomalies: tt.anomalies}))

			_, err := e.AnalyzePhoto(context.Background(), photo())
			require.NoError(t, err)

			events := e.FetchRecentEvents()
			require.GreaterOrEqual(t, len(events), 2)
			require.LessOrEqual(t, len(events), 3)
			assert.Equal(t, "AnalysisCompleted", events[len(events)-1].Text)

			var texts []string
			for _, ev := range events {
				texts = append(texts, ev.Text)
				assert.False(t, ev.Escalate, ev.Text)
				assert.Equal(t, pupdate.Subsystem, ev.Subsystem)
			}
			assert.Equal(t, tt.want, texts)

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			assert.Len(t, lines, len(tt.want))
			assert.True(t, strings.HasPrefix(lines[0], "[TEST] AnalysisStarted"))
			assert.Equal(t, fmt.Sprintf("PupdateEngine: %d recent events (test mode: true)", len(tt.want)), e.DiagnosticsSummary())
		})
	}
}

func TestNew_DefaultAnalyzer(t *testing.T) {
	t.Parallel()

	e := newEngine(t, nil)
	_, err := e.AnalyzePhoto(context.Background(), photo())
	require.NoError(t, err)

	var texts []string
	for _, ev := range e.FetchRecentEvents() {
		texts = append(texts, ev.Text)
	}
	assert.Equal(t, []string{"AnalysisStarted", "AnalysisCompleted"}, texts)
}

func TestAnalyzePhoto_Result(t *testing.T) {
	t.Parallel()

	e := newEngine(t, nil, pupdate.WithAnalyzer(pupdate.StubAnalyzer{Anomalies: []string{"redness", "tangles"}}))

	a, err := e.AnalyzePhoto(context.Background(), photo())
	require.NoError(t, err)
	assert.Equal(t, "p-1", a.PhotoID)
	assert.Len(t, a.Digest, 64)
	assert.Equal(t, []string{"pet", "groomed"}, a.Labels)
	assert.InDelta(t, 0.8, a.Score, 1e-9)

	again, err := e.AnalyzePhoto(context.Background(), photo())
	require.NoError(t, err)
	assert.Equal(t, a.Digest, again.Digest, "digest is stable for the same image")

	assert.Len(t, e.Analyses("pet-42"), 2)
	assert.Empty(t, e.Analyses("pet-7"))

	anomaly := e.Query(audit.Criteria{Contains: "anomaly"})
	require.Len(t, anomaly, 2)
	assert.Equal(t, "redness,tangles", anomaly[0].Metadata["anomalies"].String())
}

func TestAnalyzePhoto_Rejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		photo pupdate.Photo
		err   error
	}{
		{"empty data", pupdate.Photo{ID: "p-1"}, pupdate.ErrEmptyPhoto},
		{"not an image", pupdate.Photo{ID: "p-1", Data: []byte("%PDF"), ContentType: "application/pdf"}, pupdate.ErrUnsupportedContentType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEngine(t, nil)

			_, err := e.AnalyzePhoto(context.Background(), tt.photo)
			require.ErrorIs(t, err, tt.err)

			events := e.FetchRecentEvents()
			require.Len(t, events, 1)
			assert.Equal(t, "AnalysisRejected", events[0].Text)
		})
	}
}

func TestAnalyzePhoto_AnalyzerError(t *testing.T) {
	t.Parallel()

	boom := errors.New("model unavailable")
	e := newEngine(t, nil, pupdate.WithAnalyzer(pupdate.AnalyzerFunc(func(context.Context, pupdate.Photo) (pupdate.Analysis, error) {
		return pupdate.Analysis{}, boom
	})))

	_, err := e.AnalyzePhoto(context.Background(), photo())
	require.ErrorIs(t, err, pupdate.ErrAnalysisFailed)
	require.ErrorIs(t, err, boom)

	events := e.FetchRecentEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "AnalysisFailed", events[1].Text)
	assert.Empty(t, e.Analyses("pet-42"))
}

func TestAnalyzePhoto_Concurrent(t *testing.T) {
	t.Parallel()

	e := newEngine(t, nil)
	var wg sync.WaitGroup
	for range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.AnalyzePhoto(context.Background(), photo())
		}()
	}
	wg.Wait()

	assert.Len(t, e.FetchRecentEvents(), 20)
	assert.Len(t, e.Analyses("pet-42"), 30)
	assert.Equal(t, 60, e.Diagnostics().Count+int(e.Diagnostics().Dropped))
}
