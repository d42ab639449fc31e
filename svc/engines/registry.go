package engines

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/furfolio/enginekit/pkg/audit"
	"github.com/furfolio/enginekit/pkg/auditctx"
	"github.com/furfolio/enginekit/pkg/escalation"
	"github.com/furfolio/enginekit/pkg/logger"
	"github.com/furfolio/enginekit/pkg/trail"
	"github.com/furfolio/enginekit/svc/badge"
	"github.com/furfolio/enginekit/svc/cloudsync"
	"github.com/furfolio/enginekit/svc/marketing"
	"github.com/furfolio/enginekit/svc/pupdate"
)

// Engine is the read surface every engine shares through its embedded
// audit.Recorder.
type Engine interface {
	Subsystem() string
	FetchRecentEvents() []audit.Event
	Query(c audit.Criteria) []audit.Event
	Diagnostics() audit.Summary
	DiagnosticsSummary() string
}

// HealthFunc reports whether a backend is reachable.
type HealthFunc func(ctx context.Context) error

// Deps is the shared infrastructure handed to every engine. Bootstrap fills
// it from the environment; tests usually build it by hand.
type Deps struct {
	Sink       audit.Sink
	TrailStore trail.Store // nil keeps trails in memory
	Session    *auditctx.Session
	Mailer     marketing.Mailer
	Remote     cloudsync.Remote
	Analyzer   pupdate.Analyzer
	Classifier *escalation.Classifier
	Registry   *prometheus.Registry
	Logger     *slog.Logger

	Healthchecks map[string]HealthFunc
	Closers      []func(context.Context) error
}

// Registry owns one instance of each engine. Engines do not share buffers;
// they share the sink, the trail store, the session and the metrics.
type Registry struct {
	Badge     *badge.Engine
	Marketing *marketing.Engine
	Pupdate   *pupdate.Engine
	CloudSync *cloudsync.Engine

	engines  map[string]Engine
	trails   map[string]*trail.Trail
	session  *auditctx.Session
	registry *prometheus.Registry
	health   map[string]HealthFunc
	closers  []func(context.Context) error
	log      *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// New builds every engine from cfg and deps.
func New(cfg Config, deps Deps) (*Registry, error) {
	if deps.Mailer == nil {
		return nil, errors.Join(ErrMissingDependency, errors.New("mailer"))
	}
	if deps.Remote == nil {
		return nil, errors.Join(ErrMissingDependency, errors.New("cloud remote"))
	}
	if deps.Session == nil {
		deps.Session = auditctx.NewSession()
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Sink == nil {
		deps.Sink = audit.NewNullSink(cfg.TestMode)
	}
	store := deps.TrailStore
	if store == nil {
		store = trail.NewMemoryStore()
	}

	r := &Registry{
		engines:  make(map[string]Engine),
		trails:   make(map[string]*trail.Trail),
		session:  deps.Session,
		registry: deps.Registry,
		health:   maps.Clone(deps.Healthchecks),
		closers:  deps.Closers,
		log:      deps.Logger.With(logger.Component("engines")),
	}
	if r.health == nil {
		r.health = make(map[string]HealthFunc)
	}

	metrics := audit.NewMetrics(deps.Registry)
	var filter *audit.MetadataFilter
	if cfg.FilterPII {
		filter = audit.NewMetadataFilter()
	}

	// recorderOptions returns the options of one engine. Each engine gets its
	// own trail, keyed by subsystem, in the shared store.
	recorderOptions := func(subsystem string) ([]audit.Option, *trail.Trail, error) {
		tr, err := trail.New(store, subsystem, trail.WithCapacity(cfg.TrailCapacity))
		if err != nil {
			return nil, nil, err
		}
		r.trails[subsystem] = tr
		opts := []audit.Option{
			audit.WithCapacity(cfg.BufferCapacity),
			audit.WithSession(deps.Session),
			audit.WithMetrics(metrics),
			audit.WithLogger(deps.Logger),
			audit.WithSinkTimeout(cfg.SinkTimeout),
			audit.WithTrail(tr),
		}
		if deps.Classifier != nil {
			opts = append(opts, audit.WithClassifier(deps.Classifier))
		}
		if filter != nil {
			opts = append(opts, audit.WithMetadataFilter(filter))
		}
		return opts, tr, nil
	}

	opts, tr, err := recorderOptions(badge.Subsystem)
	if err != nil {
		return nil, err
	}
	if r.Badge, err = badge.New(deps.Sink, badge.WithTrail(tr), badge.WithRecorderOptions(opts...)); err != nil {
		return nil, err
	}

	if opts, _, err = recorderOptions(marketing.Subsystem); err != nil {
		return nil, err
	}
	if r.Marketing, err = marketing.New(deps.Sink, deps.Mailer, opts...); err != nil {
		return nil, err
	}

	if opts, _, err = recorderOptions(pupdate.Subsystem); err != nil {
		return nil, err
	}
	if r.Pupdate, err = pupdate.New(deps.Sink, pupdate.WithAnalyzer(deps.Analyzer), pupdate.WithRecorderOptions(opts...)); err != nil {
		return nil, err
	}

	if opts, _, err = recorderOptions(cloudsync.Subsystem); err != nil {
		return nil, err
	}
	if r.CloudSync, err = cloudsync.New(deps.Sink, deps.Remote,
		cloudsync.WithBatchSize(cfg.SyncBatchSize),
		cloudsync.WithRecorderOptions(opts...),
	); err != nil {
		return nil, err
	}

	for _, e := range []Engine{r.Badge, r.Marketing, r.Pupdate, r.CloudSync} {
		r.engines[e.Subsystem()] = e
	}
	return r, nil
}

// Names returns the subsystem names of all engines, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.engines))
}

// Engine looks an engine up by subsystem name.
func (r *Registry) Engine(name string) (Engine, bool) {
	e, ok := r.engines[name]
	return e, ok
}

// Diagnostics returns the summary of every engine, ordered by name.
func (r *Registry) Diagnostics() []audit.Summary {
	names := r.Names()
	out := make([]audit.Summary, len(names))
	for i, name := range names {
		out[i] = r.engines[name].Diagnostics()
	}
	return out
}

// Trail reads the persisted trail of the named engine, oldest first.
func (r *Registry) Trail(ctx context.Context, name string) ([]string, error) {
	tr, ok := r.trails[name]
	if !ok {
		return nil, errors.Join(ErrUnknownEngine, errors.New(name))
	}
	return tr.Entries(ctx)
}

// Session is the identity shared by all engines.
func (r *Registry) Session() *auditctx.Session { return r.session }

// Gatherer exposes the engine metrics for scraping.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

// Healthcheck runs every backend check concurrently. The returned map holds
// the failures by backend name; err is ErrUnhealthy joined with them.
func (r *Registry) Healthcheck(ctx context.Context) (map[string]error, error) {
	var (
		mu       sync.Mutex
		failures = make(map[string]error)
		g        errgroup.Group
	)
	for name, check := range r.health {
		g.Go(func() error {
			if err := check(ctx); err != nil {
				mu.Lock()
				failures[name] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) == 0 {
		return nil, nil
	}
	errs := []error{ErrUnhealthy}
	for _, name := range slices.Sorted(maps.Keys(failures)) {
		r.log.WarnContext(ctx, "backend healthcheck failed", slog.String("backend", name), logger.Error(failures[name]))
		errs = append(errs, failures[name])
	}
	return failures, errors.Join(errs...)
}

// Close releases the backends in reverse order of acquisition. It is safe to
// call more than once.
func (r *Registry) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		var errs []error
		for i := len(r.closers) - 1; i >= 0; i-- {
			if err := r.closers[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		r.closeErr = errors.Join(errs...)
	})
	return r.closeErr
}
