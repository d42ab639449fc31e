package logger

import (
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Role records the acting role under the key "role". Empty roles are omitted.
func Role(role string) slog.Attr {
	if role == "" {
		return slog.Attr{}
	}
	return slog.String("role", role)
}

// StaffID records the acting staff member under the key "staff_id".
// Empty identifiers are omitted.
func StaffID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("staff_id", id)
}

// Subsystem records the engine name under the key "subsystem".
func Subsystem(name string) slog.Attr {
	return slog.String("subsystem", name)
}

// Escalate records the escalation flag under the key "escalate".
func Escalate(v bool) slog.Attr {
	return slog.Bool("escalate", v)
}

// EventID records the event identifier under the key "event_id".
func EventID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("event_id", id)
}

// EventText records the event description under the key "event".
func EventText(text string) slog.Attr {
	return slog.String("event", text)
}

// Sink records the analytics sink name under the key "sink".
func Sink(name string) slog.Attr {
	return slog.String("sink", name)
}

func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
