package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "TOWBER_DB_DSN"
	EnvDBHost = "TOWBER_DB_HOST"
	EnvDBUser = "TOWBER_DB_USER"
	EnvDBName = "TOWBER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Stripe   StripeConfig
	Telegram TelegramConfig
	Uploads  UploadsConfig
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
	Env          string `envconfig:"TOWBER_APP_ENV" required:"true"`
	Port         string `envconfig:"TOWBER_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TOWBER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TOWBER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TOWBER_DB_DSN"`
	Driver string `envconfig:"TOWBER_DB_DRIVER" default:"postgres"`

	// AutoMigrate runs pending goose migrations on startup in dev.
	AutoMigrate bool `envconfig:"TOWBER_DB_AUTO_MIGRATE" default:"false"`

	LegacyHost     string `envconfig:"TOWBER_DB_HOST"`
	LegacyPort     int    `envconfig:"TOWBER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TOWBER_DB_USER"`
	LegacyPassword string `envconfig:"TOWBER_DB_PASSWORD"`
	LegacyName     string `envconfig:"TOWBER_DB_NAME"`
	LegacySSLMode  string `envconfig:"TOWBER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TOWBER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TOWBER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TOWBER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TOWBER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TOWBER_REDIS_URL"`
	Address      string        `envconfig:"TOWBER_REDIS_ADDR"`
	Password     string        `envconfig:"TOWBER_REDIS_PASSWORD"`
	DB           int           `envconfig:"TOWBER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TOWBER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TOWBER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TOWBER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TOWBER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TOWBER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey   string        `envconfig:"TOWBER_STRIPE_API_KEY"`
	Secret   string        `envconfig:"TOWBER_STRIPE_WEBHOOK_SECRET"`
	Env      string        `envconfig:"TOWBER_STRIPE_ENV" default:"test"`
	Currency string        `envconfig:"TOWBER_STRIPE_CURRENCY" default:"cad"`
	Timeout  time.Duration `envconfig:"TOWBER_STRIPE_TIMEOUT" default:"15s"`

	EventIdempotencyTTL time.Duration `envconfig:"TOWBER_STRIPE_EVENT_IDEMPOTENCY_TTL" default:"720h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type TelegramConfig struct {
	BotToken   string        `envconfig:"TOWBER_TELEGRAM_BOT_TOKEN"`
	ChatID     string        `envconfig:"TOWBER_TELEGRAM_CHAT_ID"`
	TestChatID string        `envconfig:"TOWBER_TELEGRAM_TEST_CHAT_ID"`
	UseTest    bool          `envconfig:"TOWBER_TELEGRAM_USE_TEST_CHAT" default:"false"`
	Timeout    time.Duration `envconfig:"TOWBER_TELEGRAM_TIMEOUT" default:"10s"`
}

// TargetChatID resolves the operator channel for the configured environment.
func (t TelegramConfig) TargetChatID() string {
	if t.UseTest && t.TestChatID != "" {
		return t.TestChatID
	}
	return t.ChatID
}

type UploadsConfig struct {
	// PublicBaseURL prefixes image keys when composing notification links.
	PublicBaseURL string `envconfig:"TOWBER_UPLOADS_PUBLIC_BASE_URL" default:"https://towber-api.shingsonz.workers.dev/api/upload"`
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
