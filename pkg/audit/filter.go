package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/furfolio/enginekit/pkg/metadata"
)

// FilterAction defines what happens to a matched metadata field.
type FilterAction string

const (
	FilterActionRemove FilterAction = "remove"
	FilterActionHash   FilterAction = "hash"
	FilterActionMask   FilterAction = "mask"
)

// defaultPIIFields covers the client contact data engines tend to attach.
var defaultPIIFields = map[string]FilterAction{
	"password":      FilterActionRemove,
	"token":         FilterActionRemove,
	"api_key":       FilterActionRemove,
	"secret":        FilterActionRemove,
	"card_number":   FilterActionMask,
	"phone":         FilterActionMask,
	"phone_number":  FilterActionMask,
	"email":         FilterActionHash,
	"owner_email":   FilterActionHash,
	"address":       FilterActionHash,
	"date_of_birth": FilterActionHash,
}

// MetadataFilter redacts sensitive metadata before an event is stored or
// forwarded. Keys match case-insensitively. Patterns may use "*x" (suffix),
// "x*" (prefix) and "*x*" (contains). Nested maps are filtered recursively.
type MetadataFilter struct {
	rules     map[string]FilterAction
	allowed   map[string]bool
	filterPII bool
}

// FilterOption configures a MetadataFilter.
type FilterOption func(*MetadataFilter)

// WithCustomField adds a rule for a field name or pattern.
func WithCustomField(field string, action FilterAction) FilterOption {
	return func(f *MetadataFilter) {
		f.rules[strings.ToLower(field)] = action
	}
}

// WithAllowedField lets a field through even if a PII rule would match it.
func WithAllowedField(field string) FilterOption {
	return func(f *MetadataFilter) {
		f.allowed[strings.ToLower(field)] = true
	}
}

// WithoutPIIDefaults disables the built-in PII rules.
func WithoutPIIDefaults() FilterOption {
	return func(f *MetadataFilter) {
		f.filterPII = false
	}
}

// NewMetadataFilter creates a filter with the PII defaults enabled.
func NewMetadataFilter(opts ...FilterOption) *MetadataFilter {
	f := &MetadataFilter{
		rules:     make(map[string]FilterAction),
		allowed:   make(map[string]bool),
		filterPII: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Filter returns a redacted copy of md. A nil filter returns a plain copy.
func (f *MetadataFilter) Filter(md metadata.Map) metadata.Map {
	if f == nil || md == nil {
		return md.Clone()
	}

	out := make(metadata.Map, len(md))
	for key, value := range md {
		action, ok := f.match(strings.ToLower(key))
		if !ok {
			if nested, isMap := value.AsMap(); isMap {
				value = metadata.Nested(f.Filter(nested))
			}
			out[key] = value
			continue
		}
		if redacted, keep := apply(action, value); keep {
			out[key] = redacted
		}
	}
	return out
}

func (f *MetadataFilter) match(key string) (FilterAction, bool) {
	if f.allowed[key] {
		return "", false
	}
	if a, ok := f.rules[key]; ok {
		return a, true
	}
	if a, ok := matchPattern(key, f.rules); ok {
		return a, true
	}
	if f.filterPII {
		if a, ok := defaultPIIFields[key]; ok {
			return a, true
		}
	}
	return "", false
}

func matchPattern(key string, rules map[string]FilterAction) (FilterAction, bool) {
	for pattern, action := range rules {
		if !strings.Contains(pattern, "*") {
			continue
		}
		switch {
		case len(pattern) > 2 && strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*"):
			if strings.Contains(key, pattern[1:len(pattern)-1]) {
				return action, true
			}
		case strings.HasPrefix(pattern, "*"):
			if strings.HasSuffix(key, pattern[1:]) {
				return action, true
			}
		case strings.HasSuffix(pattern, "*"):
			if strings.HasPrefix(key, pattern[:len(pattern)-1]) {
				return action, true
			}
		}
	}
	return "", false
}

func apply(action FilterAction, v metadata.Value) (metadata.Value, bool) {
	switch action {
	case FilterActionRemove:
		return metadata.Value{}, false
	case FilterActionHash:
		sum := sha256.Sum256([]byte(v.String()))
		return metadata.String(hex.EncodeToString(sum[:])), true
	case FilterActionMask:
		return metadata.String(mask(v.String())), true
	default:
		return v, true
	}
}

// mask keeps the first and last characters of longer values.
func mask(s string) string {
	r := []rune(s)
	n := len(r)
	switch {
	case n <= 4:
		return strings.Repeat("*", n)
	case n <= 8:
		return string(r[:1]) + strings.Repeat("*", n-2) + string(r[n-1:])
	default:
		return string(r[:2]) + strings.Repeat("*", n-4) + string(r[n-2:])
	}
}
