// Package config loads and validates server config from env and an optional
// .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds server configuration loaded from the environment.
type Config struct {
	// ListenAddr is the address the HTTP server listens on (e.g. :8080).
	ListenAddr string `mapstructure:"LINKPG_LISTEN_ADDR"`
	// ShutdownTimeout bounds graceful shutdown (e.g. "5s").
	ShutdownTimeout string `mapstructure:"LINKPG_SHUTDOWN_TIMEOUT"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `mapstructure:"LINKPG_LOG_LEVEL"`
	// PrettyLog selects the colored development encoder over JSON.
	PrettyLog bool `mapstructure:"LINKPG_PRETTY_LOG"`

	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Migrate runs pending schema migrations at startup.
	Migrate bool `mapstructure:"LINKPG_MIGRATE"`

	// RedisAddr enables the Redis session store when set (e.g. "localhost:6379").
	// Empty means sessions are held in memory.
	RedisAddr string `mapstructure:"LINKPG_REDIS_ADDR"`
	// RedisPassword is optional.
	RedisPassword string `mapstructure:"LINKPG_REDIS_PASSWORD"`
	// RedisDB is the Redis DB number.
	RedisDB int `mapstructure:"LINKPG_REDIS_DB"`

	// SessionSecret signs session tokens. Required.
	SessionSecret string `mapstructure:"LINKPG_SESSION_SECRET"`
	// SessionTTL is the session lifetime (e.g. "24h").
	SessionTTL string `mapstructure:"LINKPG_SESSION_TTL"`

	// Google OAuth credentials. Required unless the server runs read-only
	// behind some other auth layer.
	GoogleClientID     string `mapstructure:"LINKPG_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"LINKPG_GOOGLE_CLIENT_SECRET"`
	// OAuthRedirectURL is the externally reachable callback URL
	// (e.g. "https://example.com/auth/callback").
	OAuthRedirectURL string `mapstructure:"LINKPG_OAUTH_REDIRECT_URL"`

	// BasePath is the URL prefix where the UI is mounted (e.g. "/app").
	BasePath string `mapstructure:"LINKPG_BASE_PATH"`
	// ReadOnly disables bookmark writes.
	ReadOnly bool `mapstructure:"LINKPG_READ_ONLY"`
	// CookieSecure marks the session cookie as Secure; enable behind TLS.
	CookieSecure bool `mapstructure:"LINKPG_COOKIE_SECURE"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI). Env vars
// override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("LINKPG_LISTEN_ADDR", ":8080")
	v.SetDefault("LINKPG_SHUTDOWN_TIMEOUT", "5s")
	v.SetDefault("LINKPG_LOG_LEVEL", "info")
	v.SetDefault("LINKPG_PRETTY_LOG", false)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("LINKPG_MIGRATE", true)
	v.SetDefault("LINKPG_REDIS_ADDR", "")
	v.SetDefault("LINKPG_REDIS_PASSWORD", "")
	v.SetDefault("LINKPG_REDIS_DB", 0)
	v.SetDefault("LINKPG_SESSION_SECRET", "")
	v.SetDefault("LINKPG_SESSION_TTL", "24h")
	v.SetDefault("LINKPG_GOOGLE_CLIENT_ID", "")
	v.SetDefault("LINKPG_GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("LINKPG_OAUTH_REDIRECT_URL", "")
	v.SetDefault("LINKPG_BASE_PATH", "")
	v.SetDefault("LINKPG_READ_ONLY", false)
	v.SetDefault("LINKPG_COOKIE_SECURE", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("config: DATABASE_URL must be set")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("config: LINKPG_SESSION_SECRET must be set")
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil, errors.New("config: LINKPG_GOOGLE_CLIENT_ID and LINKPG_GOOGLE_CLIENT_SECRET must be set")
	}
	if cfg.OAuthRedirectURL == "" {
		return nil, errors.New("config: LINKPG_OAUTH_REDIRECT_URL must be set")
	}

	return &cfg, nil
}

// ShutdownTimeoutDuration parses ShutdownTimeout. Returns 5s if unset or invalid.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// SessionTTLDuration parses SessionTTL. Returns 24h if unset or invalid.
func (c *Config) SessionTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}
