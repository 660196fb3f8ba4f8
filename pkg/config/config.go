// Package config loads the WHIP_* environment into typed structs. A .env
// file in the working directory is read first when present; real
// environment variables always win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces the nested keys; the tags carry the full variable
// names so lookups go through envconfig's alternate-name path.
const EnvPrefix = "WHIP"

type Config struct {
	App        AppConfig
	Metrics    MetricsConfig
	DB         DBConfig
	Redis      RedisConfig
	Catalog    CatalogConfig
	Storefront StorefrontConfig
	Admin      AdminConfig
	Gateway    GatewayConfig
}

type AppConfig struct {
	Env      string `envconfig:"WHIP_APP_ENV" default:"dev"`
	Port     string `envconfig:"WHIP_PORT"`
	LogLevel string `envconfig:"WHIP_LOG_LEVEL" default:"info"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"WHIP_METRICS_ENABLED" default:"true"`
	Token   string `envconfig:"WHIP_METRICS_TOKEN"`
}

type DBConfig struct {
	DSN             string        `envconfig:"WHIP_DB_DSN"`
	MaxOpenConns    int           `envconfig:"WHIP_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"WHIP_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"WHIP_DB_CONN_MAX_LIFETIME" default:"30m"`
	MigrateOnStart  bool          `envconfig:"WHIP_DB_MIGRATE_ON_START" default:"true"`
}

type RedisConfig struct {
	URL        string        `envconfig:"WHIP_REDIS_URL"`
	KeyPrefix  string        `envconfig:"WHIP_REDIS_KEY_PREFIX" default:"whip"`
	SessionTTL time.Duration `envconfig:"WHIP_REDIS_SESSION_TTL" default:"720h"`
}

type CatalogConfig struct {
	BaseURL    string        `envconfig:"WHIP_CATALOG_URL" default:"http://localhost:8082"`
	Timeout    time.Duration `envconfig:"WHIP_CATALOG_TIMEOUT" default:"10s"`
	MaxRetries uint64        `envconfig:"WHIP_CATALOG_MAX_RETRIES" default:"0"`
	RetryDelay time.Duration `envconfig:"WHIP_CATALOG_RETRY_DELAY" default:"1s"`
}

type StorefrontConfig struct {
	StockPolicy  string        `envconfig:"WHIP_STOCK_POLICY" default:"per_size"`
	ToastTTL     time.Duration `envconfig:"WHIP_TOAST_TTL" default:"1500ms"`
	ChatDelay    time.Duration `envconfig:"WHIP_CHAT_DELAY" default:"1s"`
	TypingSpeed  time.Duration `envconfig:"WHIP_CHAT_TYPING_SPEED" default:"30ms"`
	CookieSecure bool          `envconfig:"WHIP_COOKIE_SECURE" default:"false"`
}

type AdminConfig struct {
	Email        string        `envconfig:"WHIP_ADMIN_EMAIL" default:"admin@whip-helmets.com"`
	PasswordHash string        `envconfig:"WHIP_ADMIN_PASSWORD_HASH"`
	JWTSecret    string        `envconfig:"WHIP_ADMIN_JWT_SECRET"`
	TokenTTL     time.Duration `envconfig:"WHIP_ADMIN_TOKEN_TTL" default:"15m"`
}

type GatewayConfig struct {
	CatalogURL    string `envconfig:"WHIP_GATEWAY_CATALOG_URL" default:"http://catalog:8082"`
	StorefrontURL string `envconfig:"WHIP_GATEWAY_STOREFRONT_URL" default:"http://storefront:8081"`
}

// Load reads the optional .env file and processes the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// PortOr returns the configured port or def.
func (c *Config) PortOr(def string) string {
	if c.App.Port != "" {
		return c.App.Port
	}
	return def
}
