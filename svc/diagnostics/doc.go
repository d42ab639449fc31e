// Package diagnostics serves the engines' read surface over HTTP.
//
// All responses are JSON except /metrics:
//
//	GET /engines                          summaries of every engine
//	GET /engines/{name}/summary           one summary plus its display line
//	GET /engines/{name}/events            recent events, oldest first
//	    ?escalated=true ?contains= ?since=RFC3339 ?limit=N
//	GET /engines/{name}/trail             persisted audit trail lines
//	GET /metrics                          Prometheus exposition
//	GET /healthz                          200, or 503 listing failing backends
//
// Requests carry an X-Request-Id, generated when the client sends none.
package diagnostics
