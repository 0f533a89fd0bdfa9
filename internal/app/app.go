// Package app wires the store, repositories, cache and collaborators into
// one process-wide graph.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/verifi-app/verifi-backend/internal/analytics"
	"github.com/verifi-app/verifi-backend/internal/businesses"
	"github.com/verifi-app/verifi-backend/internal/promos"
	"github.com/verifi-app/verifi-backend/internal/query"
	"github.com/verifi-app/verifi-backend/internal/reviews"
	"github.com/verifi-app/verifi-backend/internal/schema"
	"github.com/verifi-app/verifi-backend/internal/seed"
	"github.com/verifi-app/verifi-backend/pkg/clock"
	"github.com/verifi-app/verifi-backend/pkg/codec"
	"github.com/verifi-app/verifi-backend/pkg/config"
	"github.com/verifi-app/verifi-backend/pkg/db"
	"github.com/verifi-app/verifi-backend/pkg/ids"
	"github.com/verifi-app/verifi-backend/pkg/logger"
	"github.com/verifi-app/verifi-backend/pkg/metrics"
	"github.com/verifi-app/verifi-backend/pkg/redis"
	"github.com/verifi-app/verifi-backend/pkg/storage"
	"go.uber.org/multierr"
)

// Options overrides collaborators, mostly for tests. Zero values pick the
// production defaults.
type Options struct {
	Clock    clock.Clock
	IDs      ids.Generator
	Registry *prometheus.Registry
}

type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Store    db.Store
	Registry *prometheus.Registry
	Redis    *redis.Client
	Storage  *storage.Uploader

	Businesses *businesses.Repository
	Reviews    *reviews.Repository
	Promos     *promos.Repository
	Analytics  *analytics.Repository

	Directory *query.Directory
	Recorder  *analytics.Recorder

	closers []func() error
}

// New opens the store, prepares the schema and seeds demo data. A schema
// fault is fatal; a seed fault is logged and startup continues.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	gen := opts.IDs
	if gen == nil {
		gen = ids.UUID{}
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	a := &App{Config: cfg, Logger: logg, Registry: reg}

	store, err := db.Open(ctx, cfg.Store, logg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	if err := schema.NewManager(store, logg).EnsureSchema(ctx); err != nil {
		return nil, multierr.Append(err, a.Close())
	}

	decoder := codec.NewDecoder(logg)
	a.Businesses = businesses.NewRepository(store, decoder, logg, clk, gen)
	a.Reviews = reviews.NewRepository(store, decoder, logg, clk, gen)
	a.Promos = promos.NewRepository(store, decoder, logg, clk, gen)
	a.Analytics = analytics.NewRepository(store, clk, logg)

	if cfg.Seed.Enabled && !strings.EqualFold(cfg.Store.Driver, config.DriverNone) {
		if err := seed.New(a.Businesses, a.Promos, clk, logg).SeedIfEmpty(ctx); err != nil {
			logg.Error(ctx, "demo seed failed, continuing", err)
		}
	}

	cacheCfg := cfg.Cache
	if strings.EqualFold(cacheCfg.Backend, config.CacheBackendRedis) {
		rdb, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "redis unavailable, using in-memory cache", err)
			cacheCfg.Backend = config.CacheBackendMemory
		} else {
			a.Redis = rdb
			a.closers = append(a.closers, rdb.Close)
		}
	}

	cache, err := query.NewCache(cacheCfg, a.Redis)
	if err != nil {
		return nil, multierr.Append(err, a.Close())
	}
	client := query.NewClient(cache, query.OptionsFromConfig(cacheCfg), metrics.NewQueryMetrics(reg), clk, logg)
	a.Directory = query.NewDirectory(query.DirectoryParams{
		Client:     client,
		Businesses: a.Businesses,
		Reviews:    a.Reviews,
		Promos:     a.Promos,
		Analytics:  a.Analytics,
		Logger:     logg,
	})

	var counters analytics.CounterStore
	if a.Redis != nil {
		counters = a.Redis
	}
	a.Recorder = analytics.NewRecorder(metrics.NewEventMetrics(reg), counters, clk, logg)

	uploader, err := storage.Open(ctx, cfg.Storage, clk, logg)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("open storage: %w", err), a.Close())
	}
	a.Storage = uploader
	a.closers = append(a.closers, uploader.Close)

	ctx = logg.WithFields(ctx, map[string]any{
		"store_driver":  cfg.Store.Driver,
		"cache_backend": cacheCfg.Backend,
	})
	logg.Info(ctx, "app ready")
	return a, nil
}

// Close releases everything New opened, last opened first.
func (a *App) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	a.closers = nil
	return err
}
