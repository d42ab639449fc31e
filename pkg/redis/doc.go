// Package redis opens go-redis clients for the Redis trail backend.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := trail.NewRedisStore(client, cfg.KeyPrefix)
package redis
