package cache

import (
	"context"
	"time"
)

// Store is a small string cache used for provider results that are
// expensive to regenerate (idle clips, finished avatar videos). Entries
// may disappear at any time; callers must treat misses as normal.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// New returns a redis-backed store when addr is set, otherwise an
// in-process TTL store.
func New(addr string) Store {
	if addr != "" {
		return NewRedisStore(addr)
	}
	return NewMemoryStore()
}
