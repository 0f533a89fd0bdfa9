package query

import (
	"context"
	"errors"
	"time"

	"github.com/verifi-app/verifi-backend/pkg/redis"
)

// RedisCache shares query results between processes through redis.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, r.client.CacheKey(key))
	if errors.Is(err, redis.ErrMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.client.CacheKey(key), value, ttl)
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	namespaced := make([]string, 0, len(keys))
	for _, key := range keys {
		namespaced = append(namespaced, r.client.CacheKey(key))
	}
	return r.client.Del(ctx, namespaced...)
}
