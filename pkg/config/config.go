package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	// Business timezone must resolve in slim containers.
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "BACKOFFICE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	LockBackendLocal = "local"
	LockBackendRedis = "redis"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv    = "BACKOFFICE_APP_ENV"
	EnvPort      = "BACKOFFICE_APP_PORT"
	EnvTimezone  = "BACKOFFICE_TIMEZONE"
	EnvDBDSN     = "BACKOFFICE_DB_DSN"
	EnvDBDriver  = "BACKOFFICE_DB_DRIVER"
	EnvDBHost    = "BACKOFFICE_DB_HOST"
	EnvDBUser    = "BACKOFFICE_DB_USER"
	EnvDBName    = "BACKOFFICE_DB_NAME"
	EnvRedisURL  = "BACKOFFICE_REDIS_URL"
	EnvUseSQLite = "BACKOFFICE_USE_SQLITE"
	EnvLockMode  = "BACKOFFICE_SALES_LOCK_BACKEND"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	Sales         SalesConfig
	Notifications NotificationsConfig
	Cron          CronConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Sales.validate(cfg.Redis); err != nil {
		return nil, err
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BACKOFFICE_APP_ENV" required:"true"`
	Port         string `envconfig:"BACKOFFICE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BACKOFFICE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"BACKOFFICE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"BACKOFFICE_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"BACKOFFICE_TIMEZONE" default:"America/Sao_Paulo"`
	PhoneRegion  string `envconfig:"BACKOFFICE_PHONE_REGION" default:"BR"`
	CORSOrigins  string `envconfig:"BACKOFFICE_CORS_ORIGINS" default:"http://localhost:4200"`
	BusinessName string `envconfig:"BACKOFFICE_BUSINESS_NAME" default:"Léo Gás"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the business timezone used for day-bounded reports.
func (a AppConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(a.Timezone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

type ServiceConfig struct {
	Kind string `envconfig:"BACKOFFICE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BACKOFFICE_DB_DSN"`
	Driver string `envconfig:"BACKOFFICE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BACKOFFICE_DB_HOST"`
	LegacyPort     int    `envconfig:"BACKOFFICE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BACKOFFICE_DB_USER"`
	LegacyPassword string `envconfig:"BACKOFFICE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BACKOFFICE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BACKOFFICE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BACKOFFICE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BACKOFFICE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BACKOFFICE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BACKOFFICE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the SQLite dialector should be used.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"BACKOFFICE_REDIS_URL"`
	Address      string        `envconfig:"BACKOFFICE_REDIS_ADDR"`
	Password     string        `envconfig:"BACKOFFICE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BACKOFFICE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BACKOFFICE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BACKOFFICE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BACKOFFICE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BACKOFFICE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BACKOFFICE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type SalesConfig struct {
	LockBackend          string        `envconfig:"BACKOFFICE_SALES_LOCK_BACKEND" default:"local"`
	LockTTL              time.Duration `envconfig:"BACKOFFICE_SALES_LOCK_TTL" default:"10s"`
	LockRetry            time.Duration `envconfig:"BACKOFFICE_SALES_LOCK_RETRY" default:"50ms"`
	LockWait             time.Duration `envconfig:"BACKOFFICE_SALES_LOCK_WAIT" default:"5s"`
	DefaultPaymentMethod string        `envconfig:"BACKOFFICE_SALES_DEFAULT_PAYMENT_METHOD" default:"dinheiro"`
}

func (s SalesConfig) validate(redis RedisConfig) error {
	switch strings.ToLower(s.LockBackend) {
	case LockBackendLocal:
		return nil
	case LockBackendRedis:
		if !redis.Enabled() {
			return fmt.Errorf("%s=redis requires %s", EnvLockMode, EnvRedisURL)
		}
		return nil
	default:
		return fmt.Errorf("unsupported sales lock backend %q", s.LockBackend)
	}
}

type NotificationsConfig struct {
	RetentionDays int           `envconfig:"BACKOFFICE_NOTIFICATIONS_RETENTION_DAYS" default:"30"`
	CleanupEvery  time.Duration `envconfig:"BACKOFFICE_NOTIFICATIONS_CLEANUP_EVERY" default:"1h"`
}

type CronConfig struct {
	Interval   time.Duration `envconfig:"BACKOFFICE_CRON_INTERVAL" default:"1m"`
	LockTTL    time.Duration `envconfig:"BACKOFFICE_CRON_LOCK_TTL" default:"5m"`
	JobTimeout time.Duration `envconfig:"BACKOFFICE_CRON_JOB_TIMEOUT" default:"2m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BACKOFFICE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BACKOFFICE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:backoffice.db?_foreign_keys=on"
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
