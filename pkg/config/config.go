package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field rules envconfig cannot express. A missing JWT
// secret is fatal outside dev/test; there it is replaced by DevJWTSecret and
// JWT.Defaulted is set so the caller can warn loudly.
func (c *Config) Validate() error {
	var err error
	if strings.TrimSpace(c.JWT.Secret) == "" {
		if c.App.IsDev() || c.App.IsTest() {
			c.JWT.Secret = DevJWTSecret
			c.JWT.Defaulted = true
		} else {
			err = multierr.Append(err, fmt.Errorf("%s is required in %q", EnvJWTSecret, c.App.Env))
		}
	}
	if strings.TrimSpace(c.JWT.Issuer) == "" {
		err = multierr.Append(err, fmt.Errorf("%s must not be empty", EnvJWTIssuer))
	}
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		err = multierr.Append(err, fmt.Errorf("%s must be %q or %q, got %q", EnvDBDriver, DriverPostgres, DriverSQLite, c.DB.Driver))
	}
	if c.Redis.MetricsCacheTTL < 0 {
		err = multierr.Append(err, errors.New("redis metrics cache ttl must not be negative"))
	}
	return err
}

type AppConfig struct {
	Env          string        `envconfig:"STORERATE_APP_ENV" required:"true"`
	Port         string        `envconfig:"STORERATE_APP_PORT" default:"4000"`
	LogLevel     string        `envconfig:"STORERATE_LOG_LEVEL" default:"info"`
	LogWarnStack bool          `envconfig:"STORERATE_LOG_WARN_STACK" default:"false"`
	ReadTimeout  time.Duration `envconfig:"STORERATE_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"STORERATE_HTTP_WRITE_TIMEOUT" default:"30s"`
	CORSOrigins  []string      `envconfig:"STORERATE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsTest() bool {
	return strings.EqualFold(a.Env, AppEnvTest)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	DSN    string `envconfig:"STORERATE_DB_DSN"`
	Driver string `envconfig:"STORERATE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STORERATE_DB_HOST"`
	LegacyPort     int    `envconfig:"STORERATE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STORERATE_DB_USER"`
	LegacyPassword string `envconfig:"STORERATE_DB_PASSWORD"`
	LegacyName     string `envconfig:"STORERATE_DB_NAME"`
	LegacySSLMode  string `envconfig:"STORERATE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STORERATE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STORERATE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STORERATE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STORERATE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional; an empty URL and address disables the cache.
type RedisConfig struct {
	URL             string        `envconfig:"STORERATE_REDIS_URL"`
	Address         string        `envconfig:"STORERATE_REDIS_ADDR"`
	Password        string        `envconfig:"STORERATE_REDIS_PASSWORD"`
	DB              int           `envconfig:"STORERATE_REDIS_DB" default:"0"`
	PoolSize        int           `envconfig:"STORERATE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns    int           `envconfig:"STORERATE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout     time.Duration `envconfig:"STORERATE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout     time.Duration `envconfig:"STORERATE_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout    time.Duration `envconfig:"STORERATE_REDIS_WRITE_TIMEOUT" default:"3s"`
	MetricsCacheTTL time.Duration `envconfig:"STORERATE_REDIS_METRICS_CACHE_TTL" default:"15s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret string `envconfig:"STORERATE_JWT_SECRET"`
	Issuer string `envconfig:"STORERATE_JWT_ISSUER" default:"storerate"`

	// Defaulted is true when Secret was filled with DevJWTSecret.
	Defaulted bool `ignored:"true"`
}

type PasswordConfig struct {
	BcryptCost int `envconfig:"STORERATE_BCRYPT_COST" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STORERATE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Driver == DriverSQLite {
		db.DSN = "file:storerate.db?_foreign_keys=on"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
