package telemetry

import (
	"context"
	"log/slog"

	"github.com/furfolio/enginekit/pkg/audit"
	"github.com/furfolio/enginekit/pkg/logger"
)

// LogSink writes each event as a structured log record. Escalated events
// are logged at warn level.
type LogSink struct {
	log      *slog.Logger
	testMode bool
}

func NewLogSink(log *slog.Logger, testMode bool) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log.With(logger.Component("telemetry")), testMode: testMode}
}

func (s *LogSink) TestMode() bool { return s.testMode }

func (s *LogSink) LogEvent(ctx context.Context, e audit.Event) error {
	level := slog.LevelInfo
	if e.Escalate {
		level = slog.LevelWarn
	}
	s.log.LogAttrs(ctx, level, "engine event",
		logger.EventID(e.ID.String()),
		logger.EventText(e.Text),
		logger.Subsystem(e.Subsystem),
		logger.Role(e.Role),
		logger.StaffID(e.StaffID),
		logger.Escalate(e.Escalate),
		slog.String("metadata", e.Metadata.String()),
	)
	return nil
}
