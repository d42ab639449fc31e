// Package pg connects the engines to PostgreSQL through pgx/v5 and applies
// goose migrations from an embedded filesystem.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, trail.Migrations, "migrations", cfg, slog.Default()); err != nil {
//		return err
//	}
//	store := trail.NewPostgresStore(pool)
//
// Connect retries with a delay of RetryInterval times the attempt number and
// stops early when ctx is cancelled.
package pg
