package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Monitoring   MonitoringConfig
	Retention    RetentionConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ANNHA_APP_ENV" required:"true"`
	Port         string `envconfig:"ANNHA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ANNHA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ANNHA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ANNHA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ANNHA_DB_DSN"`
	Driver string `envconfig:"ANNHA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ANNHA_DB_HOST"`
	LegacyPort     int    `envconfig:"ANNHA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ANNHA_DB_USER"`
	LegacyPassword string `envconfig:"ANNHA_DB_PASSWORD"`
	LegacyName     string `envconfig:"ANNHA_DB_NAME"`
	LegacySSLMode  string `envconfig:"ANNHA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ANNHA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ANNHA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ANNHA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ANNHA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ANNHA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ANNHA_REDIS_ADDR"`
	Password     string        `envconfig:"ANNHA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ANNHA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ANNHA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ANNHA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ANNHA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ANNHA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ANNHA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ANNHA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ANNHA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ANNHA_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ANNHA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ANNHA_AUTO_MIGRATE" default:"false"`
}

// MonitoringConfig tunes the project health sweep.
type MonitoringConfig struct {
	SweepInterval time.Duration `envconfig:"ANNHA_MONITORING_SWEEP_INTERVAL" default:"1h"`
	Workers       int           `envconfig:"ANNHA_MONITORING_WORKERS" default:"4"`
	QueryTimeout  time.Duration `envconfig:"ANNHA_MONITORING_QUERY_TIMEOUT" default:"10s"`
}

type RetentionConfig struct {
	NotificationDays int `envconfig:"ANNHA_NOTIFICATION_RETENTION_DAYS" default:"90"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ANNHA_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"ANNHA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ANNHA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"ANNHA_PUBSUB_NOTIFICATION_TOPIC" default:"annha-notification-events"`
	NotificationSubscription string `envconfig:"ANNHA_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ANNHA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ANNHA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ANNHA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
