package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "aquagen"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "AQUAGEN_DB_DSN"
	EnvDBHost = "AQUAGEN_DB_HOST"
	EnvDBUser = "AQUAGEN_DB_USER"
	EnvDBName = "AQUAGEN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
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
	Env          string `envconfig:"AQUAGEN_APP_ENV" required:"true"`
	Port         string `envconfig:"AQUAGEN_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AQUAGEN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AQUAGEN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AQUAGEN_DB_DSN"`
	Driver string `envconfig:"AQUAGEN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AQUAGEN_DB_HOST"`
	LegacyPort     int    `envconfig:"AQUAGEN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AQUAGEN_DB_USER"`
	LegacyPassword string `envconfig:"AQUAGEN_DB_PASSWORD"`
	LegacyName     string `envconfig:"AQUAGEN_DB_NAME"`
	LegacySSLMode  string `envconfig:"AQUAGEN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AQUAGEN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AQUAGEN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AQUAGEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AQUAGEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AQUAGEN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AQUAGEN_REDIS_ADDR"`
	Password     string        `envconfig:"AQUAGEN_REDIS_PASSWORD"`
	DB           int           `envconfig:"AQUAGEN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AQUAGEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AQUAGEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AQUAGEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AQUAGEN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AQUAGEN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"AQUAGEN_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"AQUAGEN_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"AQUAGEN_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"AQUAGEN_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AQUAGEN_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AQUAGEN_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AQUAGEN_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AQUAGEN_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AQUAGEN_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"AQUAGEN_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"AQUAGEN_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"AQUAGEN_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"AQUAGEN_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"AQUAGEN_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"AQUAGEN_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AQUAGEN_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	ConsumerIdempotencyTTL time.Duration `envconfig:"AQUAGEN_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"AQUAGEN_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	FarmTopic        string `envconfig:"AQUAGEN_PUBSUB_FARM_TOPIC" default:"aquagen-farm-events"`
	FarmSubscription string `envconfig:"AQUAGEN_PUBSUB_FARM_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"AQUAGEN_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"AQUAGEN_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"AQUAGEN_OUTBOX_MAX_ATTEMPTS" default:"10"`
	MetricsPort    string `envconfig:"AQUAGEN_OUTBOX_METRICS_PORT" default:"9090"`
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
