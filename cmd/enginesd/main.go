// Command enginesd runs the Furfolio engines behind the diagnostics server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/furfolio/enginekit/pkg/auditctx"
	"github.com/furfolio/enginekit/pkg/config"
	"github.com/furfolio/enginekit/pkg/httpserver"
	"github.com/furfolio/enginekit/pkg/logger"
	"github.com/furfolio/enginekit/pkg/ratelimit"
	"github.com/furfolio/enginekit/svc/diagnostics"
	"github.com/furfolio/enginekit/svc/engines"
)

type appConfig struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`
}

func main() {
	var app appConfig
	config.MustLoad(&app)

	opts := []logger.Option{
		logger.WithEnvironment(app.Env, "furfolio-engines"),
		logger.WithContextExtractors(auditctx.LoggerExtractor()),
	}
	if app.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(app.LogLevel))
	}
	if app.LogFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(app.LogFormat)))
	}
	log := logger.New(opts...)
	logger.SetAsDefault(log)

	if err := run(log); err != nil {
		log.Error("enginesd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg engines.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	var srvCfg httpserver.Config
	if err := config.Load(&srvCfg); err != nil {
		return err
	}

	var rateCfg ratelimit.Config
	if err := config.Load(&rateCfg); err != nil {
		return err
	}
	limiter, err := ratelimit.New(rateCfg)
	if err != nil {
		return err
	}

	reg, err := engines.Bootstrap(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := reg.Close(context.Background()); err != nil {
			log.Warn("closing backends", logger.Error(err))
		}
	}()

	h := diagnostics.New(reg,
		diagnostics.WithLogger(log),
		diagnostics.WithRateLimit(limiter),
	)
	return httpserver.NewFromConfig(srvCfg, httpserver.WithLogger(log)).Run(ctx, h.Routes())
}
