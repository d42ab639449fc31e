package escalation

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/furfolio/enginekit/pkg/metadata"
)

// DefaultTerms are matched when no custom terms are configured.
var DefaultTerms = []string{"danger", "critical", "delete"}

// Classifier flags events whose text or metadata values contain any of its
// terms. Matching is a case-insensitive substring search with no word
// boundaries, so "decriticalized" matches "critical".
type Classifier struct {
	terms []string // folded
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTerms replaces the default term set. Blank terms are ignored.
func WithTerms(terms ...string) Option {
	return func(c *Classifier) {
		c.terms = terms
	}
}

// New creates a Classifier. Without options it uses DefaultTerms.
func New(opts ...Option) *Classifier {
	c := &Classifier{terms: DefaultTerms}
	for _, opt := range opts {
		opt(c)
	}

	folded := make([]string, 0, len(c.terms))
	for _, t := range c.terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		folded = append(folded, fold(t))
	}
	c.terms = folded
	return c
}

// Terms returns the folded terms the classifier matches.
func (c *Classifier) Terms() []string {
	out := make([]string, len(c.terms))
	copy(out, c.terms)
	return out
}

// Classify reports whether the event must be escalated. The text is checked
// first, then every metadata value in its string form. A nested map is
// matched in its rendered form, so its keys count as part of the value.
// Top-level keys are not searched. A nil map only checks the text.
func (c *Classifier) Classify(text string, md metadata.Map) bool {
	if c.Match(text) {
		return true
	}
	for _, k := range md.Keys() {
		if c.Match(md[k].String()) {
			return true
		}
	}
	return false
}

// Match reports whether s contains any term.
func (c *Classifier) Match(s string) bool {
	if s == "" || len(c.terms) == 0 {
		return false
	}
	folded := fold(s)
	for _, t := range c.terms {
		if strings.Contains(folded, t) {
			return true
		}
	}
	return false
}

// fold builds a Caser per call since a Caser must not be shared between goroutines.
func fold(s string) string {
	return cases.Fold().String(s)
}

var defaultClassifier = New()

// Classify runs the default classifier.
func Classify(text string, md metadata.Map) bool {
	return defaultClassifier.Classify(text, md)
}
