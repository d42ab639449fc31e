// Package engines assembles the Furfolio engines on shared infrastructure.
//
// Config is loaded with pkg/config from ENGINE_* variables. Bootstrap connects
// the selected trail backend (memory, redis, mongo, postgres or s3) and the
// telemetry sinks (log, webhook, opensearch), then calls New. New builds one
// badge, marketing, pupdate and cloud sync engine. They share the sink, the
// trail store, the session, the metrics and the escalation classifier, but
// each keeps its own ring buffer and its own trail key.
//
//	var cfg engines.Config
//	config.MustLoad(&cfg)
//
//	reg, err := engines.Bootstrap(ctx, cfg, log)
//	if err != nil {
//		return err
//	}
//	defer reg.Close(context.Background())
//
//	reg.Session().Login("manager", staffID)
//	reg.Badge.Award(ctx, ownerID, "regular")
package engines
