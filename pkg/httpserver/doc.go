// Package httpserver runs the diagnostics HTTP handler with configured
// timeouts and graceful shutdown.
//
// Run binds the listener, serves until the context is cancelled or the
// process receives SIGINT or SIGTERM, then calls Shutdown with the configured
// deadline. Listen failures are wrapped with ErrStart and shutdown failures
// with ErrShutdown.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("diagnostics server stopped", logger.Error(err))
//	}
package httpserver
