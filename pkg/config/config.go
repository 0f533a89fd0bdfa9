package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Store   StoreConfig
	Cache   CacheConfig
	Redis   RedisConfig
	Storage StorageConfig
	Seed    SeedConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VERIFI_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"VERIFI_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"VERIFI_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"VERIFI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StoreConfig struct {
	Driver string `envconfig:"VERIFI_STORE_DRIVER" default:"sqlite"`
	// DSN is a file path (or file: URI) for sqlite and a connection URL for postgres.
	DSN         string        `envconfig:"VERIFI_STORE_DSN" default:"verifi.db"`
	BusyTimeout time.Duration `envconfig:"VERIFI_STORE_BUSY_TIMEOUT" default:"5s"`

	MaxOpenConns    int           `envconfig:"VERIFI_STORE_MAX_OPEN_CONNS" default:"0"`
	MaxIdleConns    int           `envconfig:"VERIFI_STORE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"VERIFI_STORE_CONN_MAX_LIFETIME" default:"1h"`
}

// IsSQLite reports whether the embedded engine backs the store.
func (s StoreConfig) IsSQLite() bool {
	return strings.EqualFold(s.Driver, DriverSQLite)
}

type CacheConfig struct {
	Backend        string        `envconfig:"VERIFI_CACHE_BACKEND" default:"memory"`
	StaleTime      time.Duration `envconfig:"VERIFI_CACHE_STALE_TIME" default:"5m"`
	Size           int           `envconfig:"VERIFI_CACHE_SIZE" default:"512"`
	Retries        uint64        `envconfig:"VERIFI_CACHE_RETRIES" default:"2"`
	RetryBaseDelay time.Duration `envconfig:"VERIFI_CACHE_RETRY_BASE_DELAY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VERIFI_REDIS_URL"`
	Address      string        `envconfig:"VERIFI_REDIS_ADDR"`
	Password     string        `envconfig:"VERIFI_REDIS_PASSWORD"`
	DB           int           `envconfig:"VERIFI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VERIFI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VERIFI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VERIFI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VERIFI_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"VERIFI_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type StorageConfig struct {
	BucketURL     string `envconfig:"VERIFI_STORAGE_BUCKET_URL" default:"mem://"`
	PublicBaseURL string `envconfig:"VERIFI_STORAGE_PUBLIC_BASE_URL" default:"http://localhost/review_photos"`
	MaxUploadMB   int    `envconfig:"VERIFI_STORAGE_MAX_UPLOAD_MB" default:"10"`
}

type SeedConfig struct {
	Enabled bool `envconfig:"VERIFI_SEED_ENABLED" default:"true"`
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case DriverSQLite, DriverPostgres, DriverNone:
	default:
		return fmt.Errorf("%s must be one of %s, %s, %s", EnvStoreDriver, DriverSQLite, DriverPostgres, DriverNone)
	}
	if c.Store.Driver != DriverNone && strings.TrimSpace(c.Store.DSN) == "" {
		return fmt.Errorf("%s is required for driver %s", EnvStoreDSN, c.Store.Driver)
	}

	switch strings.ToLower(c.Cache.Backend) {
	case CacheBackendMemory, CacheBackendNone:
	case CacheBackendRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis cache", EnvRedisURL, EnvRedisAddr)
		}
	default:
		return fmt.Errorf("%s must be one of %s, %s, %s", EnvCacheBackend, CacheBackendMemory, CacheBackendRedis, CacheBackendNone)
	}
	if c.Cache.StaleTime <= 0 {
		return fmt.Errorf("%s must be positive", EnvCacheStaleTime)
	}
	if c.Cache.RetryBaseDelay <= 0 {
		return fmt.Errorf("%s must be positive", EnvCacheRetryBaseDelay)
	}
	return nil
}
