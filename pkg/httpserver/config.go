package httpserver

import "time"

// Config configures the diagnostics listener.
type Config struct {
	Addr            string        `env:"DIAGNOSTICS_ADDR" envDefault:"127.0.0.1:9090"`
	ReadTimeout     time.Duration `env:"DIAGNOSTICS_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"DIAGNOSTICS_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"DIAGNOSTICS_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"DIAGNOSTICS_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// NewFromConfig creates a Server from cfg. Zero values keep the defaults and
// opts are applied last.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	configOpts := make([]Option, 0, 5+len(opts))

	if cfg.Addr != "" {
		configOpts = append(configOpts, WithAddr(cfg.Addr))
	}
	if cfg.ReadTimeout > 0 {
		configOpts = append(configOpts, WithReadTimeout(cfg.ReadTimeout))
	}
	if cfg.WriteTimeout > 0 {
		configOpts = append(configOpts, WithWriteTimeout(cfg.WriteTimeout))
	}
	if cfg.IdleTimeout > 0 {
		configOpts = append(configOpts, WithIdleTimeout(cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout > 0 {
		configOpts = append(configOpts, WithShutdownTimeout(cfg.ShutdownTimeout))
	}

	return New(append(configOpts, opts...)...)
}
