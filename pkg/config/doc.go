// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - the default .env file in the working directory is read once, if present;
//   - extra dotenv files can be named per call with WithEnvFiles;
//   - struct fields are populated from `env` and `envDefault` tags;
//   - each configuration type (and prefix) is parsed once and cached.
//
// Every backend package in this module exposes a Config struct meant to be
// loaded this way:
//
//	var redisCfg redis.Config
//	config.MustLoad(&redisCfg)
//
//	var stagingCfg engines.Config
//	if err := config.Load(&stagingCfg, config.WithPrefix("STAGING_")); err != nil {
//		return err
//	}
//
// Parse bypasses the cache and ResetCache clears it, which keeps tests
// independent of load order.
package config
