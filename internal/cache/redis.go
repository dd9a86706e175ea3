package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores raw query results for a bounded time.
type Cache interface {
	// Get returns (nil, false, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache implements Cache using Redis as the backing store.
// Entries are stored under key: "<prefix><key>" with the TTL handed to Set.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a Redis-based cache. Prefix may be empty.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "content:"
	}
	return &RedisCache{client: client, prefix: prefix}
}

func (r *RedisCache) key(k string) string {
	return r.prefix + k
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		// a zero TTL would store the entry forever
		return nil
	}
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}
