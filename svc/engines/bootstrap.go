package engines

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/furfolio/enginekit/pkg/audit"
	"github.com/furfolio/enginekit/pkg/auditctx"
	"github.com/furfolio/enginekit/pkg/config"
	"github.com/furfolio/enginekit/pkg/email"
	"github.com/furfolio/enginekit/pkg/escalation"
	"github.com/furfolio/enginekit/pkg/logger"
	"github.com/furfolio/enginekit/pkg/mongo"
	"github.com/furfolio/enginekit/pkg/opensearch"
	"github.com/furfolio/enginekit/pkg/pg"
	"github.com/furfolio/enginekit/pkg/redis"
	"github.com/furfolio/enginekit/pkg/telemetry"
	"github.com/furfolio/enginekit/pkg/trail"
	"github.com/furfolio/enginekit/svc/cloudsync"
	"github.com/furfolio/enginekit/svc/pupdate"
)

// Bootstrap connects the backends selected by cfg, loading their settings
// from the environment, and builds the registry on top of them. Backends
// acquired before a failure are released again.
func Bootstrap(ctx context.Context, cfg Config, log *slog.Logger) (_ *Registry, err error) {
	if log == nil {
		log = slog.Default()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := Deps{
		Session:      auditctx.NewSession(),
		Remote:       cloudsync.NewMemoryRemote(),
		Analyzer:     pupdate.StubAnalyzer{},
		Registry:     reg,
		Logger:       log,
		Healthchecks: make(map[string]HealthFunc),
	}
	defer func() {
		if err != nil {
			for i := len(deps.Closers) - 1; i >= 0; i-- {
				_ = deps.Closers[i](context.WithoutCancel(ctx))
			}
		}
	}()

	if cfg.EscalationPolicy != "" {
		policy, err := escalation.LoadPolicyFile(cfg.EscalationPolicy)
		if err != nil {
			return nil, err
		}
		deps.Classifier = policy.Classifier()
	}

	if deps.TrailStore, err = trailStore(ctx, cfg, &deps); err != nil {
		return nil, err
	}
	if deps.Sink, err = telemetrySink(ctx, cfg, &deps); err != nil {
		return nil, err
	}
	if deps.Mailer, err = mailer(); err != nil {
		return nil, err
	}

	r, err := New(cfg, deps)
	if err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "engines ready",
		logger.Component("engines"),
		slog.String("trail_backend", cfg.TrailBackend),
		slog.Bool("test_mode", cfg.TestMode),
		logger.Count(len(r.engines)),
	)
	return r, nil
}

func trailStore(ctx context.Context, cfg Config, deps *Deps) (trail.Store, error) {
	switch strings.ToLower(cfg.TrailBackend) {
	case "", BackendMemory:
		return trail.NewMemoryStore(), nil

	case BackendRedis:
		var rc redis.Config
		if err := config.Load(&rc); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, rc)
		if err != nil {
			return nil, err
		}
		deps.Healthchecks[BackendRedis] = redis.Healthcheck(client)
		deps.Closers = append(deps.Closers, func(context.Context) error { return client.Close() })
		return trail.NewRedisStore(client, rc.KeyPrefix), nil

	case BackendMongo:
		var mc mongo.Config
		if err := config.Load(&mc); err != nil {
			return nil, err
		}
		client, err := mongo.Connect(ctx, mc)
		if err != nil {
			return nil, err
		}
		deps.Healthchecks[BackendMongo] = mongo.Healthcheck(client)
		deps.Closers = append(deps.Closers, client.Disconnect)
		return trail.NewMongoStore(mongo.TrailCollection(client, mc)), nil

	case BackendPostgres:
		var pc pg.Config
		if err := config.Load(&pc); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pc)
		if err != nil {
			return nil, err
		}
		deps.Closers = append(deps.Closers, func(context.Context) error { pool.Close(); return nil })
		if err := pg.Migrate(ctx, pool, trail.Migrations, "migrations", pc, deps.Logger); err != nil {
			return nil, err
		}
		deps.Healthchecks[BackendPostgres] = pg.Healthcheck(pool)
		return trail.NewPostgresStore(pool), nil

	case BackendS3:
		var sc trail.S3Config
		if err := config.Load(&sc); err != nil {
			return nil, err
		}
		return trail.NewS3Store(ctx, sc)

	default:
		return nil, errors.Join(ErrUnknownTrailBackend, errors.New(cfg.TrailBackend))
	}
}

// telemetrySink combines the configured sinks. Remote sinks are batched
// through an AsyncSink. In test mode events only go to the console.
func telemetrySink(ctx context.Context, cfg Config, deps *Deps) (audit.Sink, error) {
	if cfg.TestMode {
		return audit.NewNullSink(true), nil
	}

	batched := func(next audit.BatchSink) audit.Sink {
		s := audit.NewAsyncSink(next, audit.AsyncOptions{
			BufferSize:   cfg.TelemetryBufferSize,
			BatchSize:    cfg.TelemetryBatchSize,
			BatchTimeout: cfg.TelemetryBatchTimeout,
			SinkTimeout:  cfg.SinkTimeout,
			Logger:       deps.Logger,
		})
		deps.Closers = append(deps.Closers, s.Close)
		return s
	}

	var sinks []audit.Sink
	for _, name := range cfg.Telemetry {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
		case TelemetryLog:
			sinks = append(sinks, telemetry.NewLogSink(deps.Logger, false))

		case TelemetryWebhook:
			var wc telemetry.WebhookConfig
			if err := config.Load(&wc); err != nil {
				return nil, err
			}
			s, err := telemetry.NewWebhookSink(wc)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, batched(s))

		case TelemetryOpenSearch:
			var oc opensearch.Config
			if err := config.Load(&oc); err != nil {
				return nil, err
			}
			client, err := opensearch.New(ctx, oc)
			if err != nil {
				return nil, err
			}
			deps.Healthchecks[TelemetryOpenSearch] = opensearch.Healthcheck(client)
			s, err := telemetry.NewOpenSearchSink(client, oc.Index)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, batched(s))

		default:
			return nil, errors.Join(ErrUnknownTelemetry, errors.New(name))
		}
	}

	if len(sinks) == 0 {
		return audit.NopSink{}, nil
	}
	return telemetry.NewMultiSink(sinks...)
}

func mailer() (email.Sender, error) {
	var ec email.Config
	if err := config.Load(&ec); err != nil {
		return nil, err
	}
	if ec.UsePostmark() {
		return email.NewPostmarkSender(ec)
	}
	return email.NewDevSender(ec.DevDir), nil
}
