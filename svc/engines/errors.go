package engines

import "errors"

var (
	ErrUnknownEngine       = errors.New("engines: unknown engine")
	ErrUnknownTrailBackend = errors.New("engines: unknown trail backend")
	ErrUnknownTelemetry    = errors.New("engines: unknown telemetry sink")
	ErrMissingDependency   = errors.New("engines: missing dependency")
	ErrUnhealthy           = errors.New("engines: backend unhealthy")
)
