package config

// EnvPrefix is handed to envconfig; every field below declares its full name.
const EnvPrefix = "STORERATE"

const (
	AppEnvDev  = "dev"
	AppEnvTest = "test"
	AppEnvProd = "production"
)

const (
	EnvAppEnv       = "STORERATE_APP_ENV"
	EnvPort         = "STORERATE_APP_PORT"
	EnvLogLevel     = "STORERATE_LOG_LEVEL"
	EnvReadTimeout  = "STORERATE_HTTP_READ_TIMEOUT"
	EnvWriteTimeout = "STORERATE_HTTP_WRITE_TIMEOUT"
	EnvCORSOrigins  = "STORERATE_CORS_ORIGINS"

	EnvDBDSN     = "STORERATE_DB_DSN"
	EnvDBDriver  = "STORERATE_DB_DRIVER"
	EnvDBHost    = "STORERATE_DB_HOST"
	EnvDBPort    = "STORERATE_DB_PORT"
	EnvDBUser    = "STORERATE_DB_USER"
	EnvDBPass    = "STORERATE_DB_PASSWORD"
	EnvDBName    = "STORERATE_DB_NAME"
	EnvDBSSLMode = "STORERATE_DB_SSLMODE"

	EnvRedisURL      = "STORERATE_REDIS_URL"
	EnvRedisCacheTTL = "STORERATE_REDIS_METRICS_CACHE_TTL"

	EnvJWTSecret = "STORERATE_JWT_SECRET"
	EnvJWTIssuer = "STORERATE_JWT_ISSUER"

	EnvBcryptCost  = "STORERATE_BCRYPT_COST"
	EnvAutoMigrate = "STORERATE_AUTO_MIGRATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

// DevJWTSecret is substituted for a missing signing key in dev and test only.
const DevJWTSecret = "storerate-dev-secret"
