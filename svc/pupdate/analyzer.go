package pupdate

import (
	"context"
	"slices"
	"strings"
)

// Analyzer inspects a photo. Implementations fill Labels, Anomalies and
// Score; the engine sets PhotoID and Digest.
type Analyzer interface {
	Analyze(ctx context.Context, p Photo) (Analysis, error)
}

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, p Photo) (Analysis, error)

func (f AnalyzerFunc) Analyze(ctx context.Context, p Photo) (Analysis, error) { return f(ctx, p) }

// StubAnalyzer returns a canned result. Every photo gets the same labels and
// the configured anomalies; the score drops by 0.1 per anomaly.
type StubAnalyzer struct {
	Anomalies []string
}

func (s StubAnalyzer) Analyze(ctx context.Context, p Photo) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}

	labels := []string{"pet", "groomed"}
	if strings.HasSuffix(p.ContentType, "/gif") {
		labels = append(labels, "animated")
	}

	score := 1.0 - 0.1*float64(len(s.Anomalies))
	if score < 0 {
		score = 0
	}
	return Analysis{
		Labels:    labels,
		Anomalies: slices.Clone(s.Anomalies),
		Score:     score,
	}, nil
}
