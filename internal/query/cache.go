package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/verifi-app/verifi-backend/pkg/config"
	"github.com/verifi-app/verifi-backend/pkg/redis"
)

// Cache stores encoded query results. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// NewCache picks the backend named in cfg. rdb is only used for the redis
// backend.
func NewCache(cfg config.CacheConfig, rdb *redis.Client) (Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case config.CacheBackendMemory, "":
		return NewMemoryCache(cfg.Size, cfg.StaleTime), nil
	case config.CacheBackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis cache backend requires a redis client")
		}
		return NewRedisCache(rdb), nil
	case config.CacheBackendNone:
		return NoCache{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}

// MemoryCache is an in-process LRU whose entries expire after ttl.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 512
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.lru.Get(key)
	return v, ok, nil
}

// Set ignores ttl; every entry shares the TTL given at construction.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.lru.Add(key, value)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.lru.Remove(key)
	}
	return nil
}

// NoCache sends every read to the store.
type NoCache struct{}

func (NoCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoCache) Delete(context.Context, ...string) error { return nil }
