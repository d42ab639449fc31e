package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/furfolio/enginekit/pkg/redis"
)

func TestConnect_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  redis.Config
		err  error
	}{
		{"empty url", redis.Config{}, redis.ErrEmptyConnectionURL},
		{"bad url", redis.Config{ConnectionURL: "http://nope"}, redis.ErrFailedToParseRedisConnString},
		{"unreachable", redis.Config{
			ConnectionURL:  "redis://127.0.0.1:1/0",
			RetryAttempts:  2,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: 2 * time.Second,
		}, redis.ErrRedisNotReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, err := redis.Connect(context.Background(), tt.cfg)
			require.ErrorIs(t, err, tt.err)
			require.Nil(t, client)
		})
	}
}
