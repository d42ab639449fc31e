package redis

import "time"

// Config configures the Redis trail backend.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL,required"` // redis://:password@localhost:6379/0
	KeyPrefix      string        `env:"REDIS_TRAIL_PREFIX" envDefault:"furfolio:trail:"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}
