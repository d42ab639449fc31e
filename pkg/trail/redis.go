package trail

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each trail in a Redis list.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore stores lists under prefix+key.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Push appends and trims in one MULTI/EXEC so readers never see an
// over-capacity list.
func (s *RedisStore) Push(ctx context.Context, key, line string, limit int) error {
	k := s.prefix + key
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, k, line)
		if limit > 0 {
			pipe.LTrim(ctx, k, int64(-limit), -1)
		}
		return nil
	})
	return err
}

func (s *RedisStore) List(ctx context.Context, key string) ([]string, error) {
	return s.client.LRange(ctx, s.prefix+key, 0, -1).Result()
}
