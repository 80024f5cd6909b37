package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares cached provider results across replicas.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// NewRedisStoreWithClient wraps an existing client (used by tests).
func NewRedisStoreWithClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (rs *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	val, err := rs.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (rs *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	// Best effort: a failed cache write only costs a regeneration later.
	rs.rdb.Set(ctx, key, value, ttl)
}
