// Package logger builds context-aware *slog.Logger instances for the engine kit.
//
// New applies a set of Option functions and returns a logger whose handler is
// wrapped by ContextHandler. The handler runs registered
// ContextExtractor callbacks on every record, which is how the audit identity
// attached with auditctx.WithIdentity ends up in log lines:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "furfolio-engines"),
//		logger.WithLevelName(cfg.LogLevel),
//		logger.WithContextExtractors(auditctx.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.WarnContext(ctx, "sink delivery failed",
//		logger.Subsystem("BadgeEngine"),
//		logger.Escalate(true),
//		logger.Error(err),
//	)
//
// # Options
//
//   - WithDevelopment, WithStaging, WithProduction and WithEnvironment apply per-stage defaults.
//   - WithFormat, WithTextFormatter and WithJSONFormatter select the handler.
//   - WithLevel and WithLevelName set the minimum level.
//   - WithAttr attaches static attributes.
//   - WithContextExtractors and WithContextValue inject attributes from context.
//
// Attribute helpers such as Role, StaffID, Subsystem and Error keep key names
// consistent. Helpers for optional values return an empty slog.Attr when the
// value is absent, and slog drops empty attributes.
package logger
