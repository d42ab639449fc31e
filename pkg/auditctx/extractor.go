package auditctx

import (
	"context"
	"log/slog"
)

// LoggerExtractor returns a ContextExtractor for the logger that adds the
// identity attached with WithIdentity as an "audit" group.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		id, ok := FromContext(ctx)
		if !ok || id.IsZero() {
			return slog.Attr{}, false
		}
		attrs := make([]slog.Attr, 0, 3)
		if id.Role != "" {
			attrs = append(attrs, slog.String("role", id.Role))
		}
		if id.StaffID != "" {
			attrs = append(attrs, slog.String("staff_id", id.StaffID))
		}
		if id.Subsystem != "" {
			attrs = append(attrs, slog.String("subsystem", id.Subsystem))
		}
		return slog.Attr{Key: "audit", Value: slog.GroupValue(attrs...)}, true
	}
}
