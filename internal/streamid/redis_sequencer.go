package streamid

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const DefaultKey = "soup:stream:seq"

// RedisSequencer shares one counter between every gateway replica.
type RedisSequencer struct {
	rdb *redis.Client
	key string
}

func NewRedisSequencer(rdb *redis.Client, key string) *RedisSequencer {
	if key == "" {
		key = DefaultKey
	}
	return &RedisSequencer{rdb: rdb, key: key}
}

func (s *RedisSequencer) Next(ctx context.Context) (int64, error) {
	return s.rdb.Incr(ctx, s.key).Result()
}
