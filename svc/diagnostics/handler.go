package diagnostics

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/furfolio/enginekit/pkg/audit"
	"github.com/furfolio/enginekit/pkg/logger"
	"github.com/furfolio/enginekit/pkg/ratelimit"
	"github.com/furfolio/enginekit/svc/engines"
)

// Source is the engine registry as seen by the diagnostics surface.
// *engines.Registry implements it.
type Source interface {
	Names() []string
	Engine(name string) (engines.Engine, bool)
	Diagnostics() []audit.Summary
	Trail(ctx context.Context, name string) ([]string, error)
	Healthcheck(ctx context.Context) (map[string]error, error)
	Gatherer() prometheus.Gatherer
}

var _ Source = (*engines.Registry)(nil)

// Handler serves the read-only diagnostics and Trust-Center endpoints.
type Handler struct {
	src     Source
	log     *slog.Logger
	timeout time.Duration
	limiter *ratelimit.Limiter
}

// Option configures a Handler.
type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

// WithRateLimit limits requests per client IP. /healthz is exempt.
func WithRateLimit(l *ratelimit.Limiter) Option {
	return func(h *Handler) { h.limiter = l }
}

func New(src Source, opts ...Option) *Handler {
	h := &Handler{src: src, log: slog.Default(), timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With(logger.Component("diagnostics"))
	return h
}

// Routes returns the router with every endpoint mounted at the root.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// Register mounts the endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(h.requestLogger)
		if h.timeout > 0 {
			r.Use(middleware.Timeout(h.timeout))
		}

		r.Get("/healthz", h.handleHealth)

		r.Group(func(r chi.Router) {
			if h.limiter != nil {
				r.Use(ratelimit.Middleware(h.limiter, ratelimit.ClientIP, h.log))
			}
			r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.src.Gatherer(), promhttp.HandlerOpts{}))

			r.Route("/engines", func(r chi.Router) {
				r.Get("/", h.handleList)
				r.Route("/{name}", func(r chi.Router) {
					r.Use(h.engineCtx)
					r.Get("/summary", h.handleSummary)
					r.Get("/events", h.handleEvents)
					r.Get("/trail", h.handleTrail)
				})
			})
		})
	})
}

type engineKey struct{}

// engineCtx resolves {name} to an engine or answers 404.
func (h *Handler) engineCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		e, ok := h.src.Engine(name)
		if !ok {
			h.writeError(w, r, http.StatusNotFound, errors.Join(engines.ErrUnknownEngine, errors.New(name)))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), engineKey{}, e)))
	})
}

func engineFrom(ctx context.Context) engines.Engine {
	e, _ := ctx.Value(engineKey{}).(engines.Engine)
	return e
}

type listResponse struct {
	Engines []audit.Summary `json:"engines"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, listResponse{Engines: h.src.Diagnostics()})
}

type summaryResponse struct {
	audit.Summary
	Line string `json:"line"`
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	e := engineFrom(r.Context())
	h.writeJSON(w, r, http.StatusOK, summaryResponse{Summary: e.Diagnostics(), Line: e.DiagnosticsSummary()})
}

type eventsResponse struct {
	Subsystem string        `json:"subsystem"`
	Events    []audit.Event `json:"events"`
}

// handleEvents supports ?escalated=true, ?contains=, ?since=RFC3339 and
// ?limit=N (newest N).
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	e := engineFrom(r.Context())
	c, err := parseCriteria(r)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	events := e.Query(c)
	if events == nil {
		events = []audit.Event{}
	}
	h.writeJSON(w, r, http.StatusOK, eventsResponse{Subsystem: e.Subsystem(), Events: events})
}

func parseCriteria(r *http.Request) (audit.Criteria, error) {
	q := r.URL.Query()
	var c audit.Criteria
	c.Contains = q.Get("contains")

	if v := q.Get("escalated"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c, errors.Join(ErrInvalidQuery, errors.New("escalated must be a boolean"))
		}
		c.EscalatedOnly = b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c, errors.Join(ErrInvalidQuery, errors.New("limit must be a non-negative integer"))
		}
		c.Limit = n
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c, errors.Join(ErrInvalidQuery, errors.New("since must be an RFC 3339 timestamp"))
		}
		c.Since = t
	}
	return c, nil
}

type trailResponse struct {
	Subsystem string   `json:"subsystem"`
	Lines     []string `json:"lines"`
}

func (h *Handler) handleTrail(w http.ResponseWriter, r *http.Request) {
	e := engineFrom(r.Context())
	lines, err := h.src.Trail(r.Context(), e.Subsystem())
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	if lines == nil {
		lines = []string{}
	}
	h.writeJSON(w, r, http.StatusOK, trailResponse{Subsystem: e.Subsystem(), Lines: lines})
}

type healthResponse struct {
	Status   string            `json:"status"`
	Backends map[string]string `json:"backends,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	failures, err := h.src.Healthcheck(r.Context())
	if err == nil {
		h.writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	backends := make(map[string]string, len(failures))
	for name, ferr := range failures {
		backends[name] = ferr.Error()
	}
	h.writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Backends: backends})
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "diagnostics request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err),
		)
	}
	h.writeJSON(w, r, status, errorResponse{Error: err.Error(), RequestID: middleware.GetReqID(r.Context())})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WarnContext(r.Context(), "failed to encode response", logger.Error(err))
	}
}

// requestLogger echoes the request ID and logs each request at debug level.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w.Header().Set(middleware.RequestIDHeader, middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.DebugContext(r.Context(), "request served",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			logger.Duration(time.Since(start)),
		)
	})
}
