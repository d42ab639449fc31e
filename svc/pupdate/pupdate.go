package pupdate

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/furfolio/enginekit/pkg/audit"
	"github.com/furfolio/enginekit/pkg/metadata"
)

// Subsystem is the audit subsystem name of the pupdate engine.
const Subsystem = "PupdateEngine"

// Photo is a pet picture uploaded after a grooming visit.
type Photo struct {
	ID          string
	PetID       string
	Data        []byte
	ContentType string // optional; must be image/* when set
}

// Analysis is the result of analysing one photo.
type Analysis struct {
	PhotoID   string   `json:"photo_id"`
	Digest    string   `json:"digest"` // blake2b-256 of the image data
	Labels    []string `json:"labels"`
	Anomalies []string `json:"anomalies,omitempty"`
	Score     float64  `json:"score"`
}

// Engine analyses pet photos and keeps the results per pet.
type Engine struct {
	*audit.Recorder
	analyzer Analyzer

	mu       sync.RWMutex
	analyses map[string][]Analysis
}

type options struct {
	analyzer Analyzer
	recorder []audit.Option
}

// Option configures the pupdate engine.
type Option func(*options)

// WithAnalyzer replaces the default StubAnalyzer.
func WithAnalyzer(a Analyzer) Option {
	return func(o *options) {
		if a != nil {
			o.analyzer = a
		}
	}
}

// WithRecorderOptions passes options to the underlying audit.Recorder.
func WithRecorderOptions(opts ...audit.Option) Option {
	return func(o *options) { o.recorder = append(o.recorder, opts...) }
}

// New returns an engine that forwards its events to sink. Without
// WithAnalyzer it uses StubAnalyzer.
func New(sink audit.Sink, opts ...Option) (*Engine, error) {
	o := options{analyzer: StubAnalyzer{}}
	for _, opt := range opts {
		opt(&o)
	}
	rec, err := audit.NewRecorder(Subsystem, sink, o.recorder...)
	if err != nil {
		return nil, err
	}
	return &Engine{Recorder: rec, analyzer: o.analyzer, analyses: make(map[string][]Analysis)}, nil
}

// AnalyzePhoto runs the analyzer on p. It records AnalysisStarted, then
// AnomalyReported when the analyzer found anomalies, then AnalysisCompleted.
func (e *Engine) AnalyzePhoto(ctx context.Context, p Photo) (Analysis, error) {
	photo := metadata.String(p.ID)

	if len(p.Data) == 0 {
		e.RecordEvent(ctx, "AnalysisRejected", metadata.Map{"photo": photo, "reason": metadata.String("empty photo")})
		return Analysis{}, ErrEmptyPhoto
	}
	if p.ContentType != "" && !strings.HasPrefix(p.ContentType, "image/") {
		e.RecordEvent(ctx, "AnalysisRejected", metadata.Map{
			"photo":        photo,
			"content_type": metadata.String(p.ContentType),
			"reason":       metadata.String("not an image"),
		})
		return Analysis{}, ErrUnsupportedContentType
	}

	sum := blake2b.Sum256(p.Data)
	digest := hex.EncodeToString(sum[:])

	e.RecordEvent(ctx, "AnalysisStarted", metadata.Map{
		"photo": photo,
		"pet":   metadata.String(p.PetID),
		"bytes": metadata.Int(len(p.Data)),
	})

	a, err := e.analyzer.Analyze(ctx, p)
	if err != nil {
		e.RecordEvent(ctx, "AnalysisFailed", metadata.Map{"photo": photo, "error": metadata.String(err.Error())})
		return Analysis{}, errors.Join(ErrAnalysisFailed, err)
	}
	a.PhotoID = p.ID
	a.Digest = digest

	if len(a.Anomalies) > 0 {
		e.RecordEvent(ctx, "AnomalyReported", metadata.Map{
			"photo":     photo,
			"pet":       metadata.String(p.PetID),
			"anomalies": metadata.String(strings.Join(a.Anomalies, ",")),
		})
	}

	e.RecordEvent(ctx, "AnalysisCompleted", metadata.Map{
		"photo":  photo,
		"labels": metadata.String(strings.Join(a.Labels, ",")),
		"score":  metadata.Number(a.Score),
		"digest": metadata.String(digest),
	})

	e.mu.Lock()
	e.analyses[p.PetID] = append(e.analyses[p.PetID], a)
	e.mu.Unlock()
	return a, nil
}

// Analyses returns the completed analyses of petID, oldest first.
func (e *Engine) Analyses(petID string) []Analysis {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Analysis, len(e.analyses[petID]))
	copy(out, e.analyses[petID])
	return out
}
