package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verifi-app/verifi-backend/pkg/redis"
)

type fakeRedis struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Ping(context.Context) *goredis.StatusCmd {
	return goredis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *goredis.StatusCmd {
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *goredis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeRedis) Incr(context.Context, string) *goredis.IntCmd {
	return goredis.NewIntResult(1, nil)
}

func (f *fakeRedis) Expire(context.Context, string, time.Duration) *goredis.BoolCmd {
	return goredis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	for _, key := range keys {
		delete(f.data, key)
	}
	return goredis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newFakeRedis()
	cache := NewRedisCache(redis.NewWithCmdable(store))

	_, ok, err := cache.Get(ctx, "promos:active")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "promos:active", []byte(`[1]`), time.Minute))
	assert.Equal(t, `[1]`, store.data["verifi:cache:promos:active"])
	assert.Equal(t, time.Minute, store.ttls["verifi:cache:promos:active"])

	got, ok, err := cache.Get(ctx, "promos:active")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1]`, string(got))

	require.NoError(t, cache.Delete(ctx, "promos:active"))
	_, ok, err = cache.Get(ctx, "promos:active")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClientOverRedisCache(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t, NewRedisCache(redis.NewWithCmdable(newFakeRedis())))

	calls := 0
	fn := func(context.Context) (map[string]int, error) {
		calls++
		return map[string]int{"approved": 2}, nil
	}
	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, client, "dashboard:b1", fn)
		require.NoError(t, err)
		assert.Equal(t, 2, got["approved"])
	}
	assert.Equal(t, 1, calls)
}
