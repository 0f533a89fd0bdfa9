package config

const EnvPrefix = "VERIFI"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

const (
	EnvAppEnv              = "VERIFI_APP_ENV"
	EnvLogLevel            = "VERIFI_LOG_LEVEL"
	EnvLogFormat           = "VERIFI_LOG_FORMAT"
	EnvStoreDriver         = "VERIFI_STORE_DRIVER"
	EnvStoreDSN            = "VERIFI_STORE_DSN"
	EnvCacheBackend        = "VERIFI_CACHE_BACKEND"
	EnvCacheStaleTime      = "VERIFI_CACHE_STALE_TIME"
	EnvCacheRetries        = "VERIFI_CACHE_RETRIES"
	EnvCacheRetryBaseDelay = "VERIFI_CACHE_RETRY_BASE_DELAY"
	EnvRedisURL            = "VERIFI_REDIS_URL"
	EnvRedisAddr           = "VERIFI_REDIS_ADDR"
	EnvStorageBucketURL    = "VERIFI_STORAGE_BUCKET_URL"
	EnvStoragePublicURL    = "VERIFI_STORAGE_PUBLIC_BASE_URL"
	EnvSeedEnabled         = "VERIFI_SEED_ENABLED"
)
