package audit

import (
	"strings"
	"time"
)

// Criteria filters a snapshot of events. Zero fields match everything.
type Criteria struct {
	EscalatedOnly bool
	Subsystem     string
	// Contains matches the event text case-insensitively.
	Contains string
	Since    time.Time
	// Limit keeps only the newest Limit matches.
	Limit int
}

// Match reports whether e satisfies every set field.
func (c Criteria) Match(e Event) bool {
	if c.EscalatedOnly && !e.Escalate {
		return false
	}
	if c.Subsystem != "" && c.Subsystem != e.Subsystem {
		return false
	}
	if c.Contains != "" && !strings.Contains(strings.ToLower(e.Text), strings.ToLower(c.Contains)) {
		return false
	}
	if !c.Since.IsZero() && e.Timestamp.Before(c.Since) {
		return false
	}
	return true
}

// Apply returns the matching events in their original order.
func (c Criteria) Apply(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if c.Match(e) {
			out = append(out, e)
		}
	}
	if c.Limit > 0 && len(out) > c.Limit {
		out = out[len(out)-c.Limit:]
	}
	return out
}
