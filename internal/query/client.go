package query

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/verifi-app/verifi-backend/pkg/clock"
	"github.com/verifi-app/verifi-backend/pkg/config"
	pkgerrors "github.com/verifi-app/verifi-backend/pkg/errors"
	"github.com/verifi-app/verifi-backend/pkg/logger"
	"github.com/verifi-app/verifi-backend/pkg/metrics"
)

const (
	DefaultStaleTime      = 5 * time.Minute
	DefaultRetries        = 2
	DefaultRetryBaseDelay = 100 * time.Millisecond
)

type Options struct {
	StaleTime      time.Duration
	Retries        uint64
	RetryBaseDelay time.Duration
}

// OptionsFromConfig copies the cache section, filling zero values with the
// defaults.
func OptionsFromConfig(cfg config.CacheConfig) Options {
	return Options{
		StaleTime:      cfg.StaleTime,
		Retries:        cfg.Retries,
		RetryBaseDelay: cfg.RetryBaseDelay,
	}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.StaleTime <= 0 {
		o.StaleTime = DefaultStaleTime
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = DefaultRetryBaseDelay
	}
	return o
}

// Client reads through a cache and retries transient store faults.
type Client struct {
	cache   Cache
	opts    Options
	metrics *metrics.QueryMetrics
	clock   clock.Clock
	logg    *logger.Logger
}

type entry struct {
	StoredAt time.Time       `json:"stored_at"`
	Data     json.RawMessage `json:"data"`
}

func NewClient(cache Cache, opts Options, m *metrics.QueryMetrics, clk clock.Clock, logg *logger.Logger) *Client {
	if cache == nil {
		cache = NoCache{}
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Client{
		cache:   cache,
		opts:    opts.withDefaults(),
		metrics: m,
		clock:   clk,
		logg:    logg,
	}
}

// Fetch returns the cached value for key while it is younger than the
// staleness window, otherwise runs fn and caches its result. Failed fetches
// are never cached.
func Fetch[T any](ctx context.Context, c *Client, key string, fn func(context.Context) (T, error)) (T, error) {
	return FetchIf(ctx, c, key, fn, nil)
}

// FetchIf is Fetch that only caches results keep accepts. A nil keep caches
// every successful result.
func FetchIf[T any](ctx context.Context, c *Client, key string, fn func(context.Context) (T, error), keep func(T) bool) (T, error) {
	if v, ok := lookup[T](ctx, c, key); ok {
		c.metrics.IncHit(key)
		return v, nil
	}
	c.metrics.IncMiss(key)

	var out T
	start := time.Now()
	err := c.withRetry(ctx, key, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	c.metrics.ObserveFetch(key, time.Since(start))
	if err != nil {
		var zero T
		return zero, err
	}

	if keep == nil || keep(out) {
		c.store(ctx, key, out)
	}
	return out, nil
}

// Mutate runs a write with the same retry rule as Fetch and drops the
// invalidate keys once it succeeds.
func Mutate[T any](ctx context.Context, c *Client, fn func(context.Context) (T, error), invalidate ...string) (T, error) {
	var out T
	err := c.withRetry(ctx, "mutate", func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	c.Invalidate(ctx, invalidate...)
	return out, nil
}

// Invalidate drops keys from the cache. Cache faults are logged only.
func (c *Client) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		ctx = c.logg.WithField(ctx, "keys", keys)
		c.logg.Warn(ctx, "cache invalidate failed")
	}
}

func (c *Client) withRetry(ctx context.Context, key string, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(c.opts.Retries, retry.NewExponential(c.opts.RetryBaseDelay))
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if attempt > 0 {
			c.metrics.IncRetry(key)
		}
		attempt++
		err := fn(ctx)
		if err != nil && pkgerrors.IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func lookup[T any](ctx context.Context, c *Client, key string) (T, bool) {
	var zero T
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.warn(ctx, key, "cache read failed", err)
		return zero, false
	}
	if !ok {
		return zero, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.warn(ctx, key, "cache entry unreadable", err)
		return zero, false
	}
	if c.clock.Now().Sub(e.StoredAt) >= c.opts.StaleTime {
		return zero, false
	}

	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		c.warn(ctx, key, "cache entry unreadable", err)
		return zero, false
	}
	return v, true
}

func (c *Client) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.warn(ctx, key, "cache encode failed", err)
		return
	}
	raw, err := json.Marshal(entry{StoredAt: c.clock.Now(), Data: data})
	if err != nil {
		c.warn(ctx, key, "cache encode failed", err)
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.opts.StaleTime); err != nil {
		c.warn(ctx, key, "cache write failed", err)
	}
}

func (c *Client) warn(ctx context.Context, key, msg string, err error) {
	ctx = c.logg.WithFields(ctx, map[string]any{"cache_key": key, "error": err.Error()})
	c.logg.Warn(ctx, msg)
}
