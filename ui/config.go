package ui

import (
	"time"
)

// Default configuration values.
const (
	DefaultCookieName      = "linkpg_session"
	DefaultRefreshInterval = 15 * time.Second
)

// Config holds UI package configuration.
type Config struct {
	// BasePath is the URL prefix where the UI is mounted.
	// For example, if mounted at "/app/", set BasePath to "/app".
	// All navigation links will be prefixed with this path.
	// Defaults to empty string (root mount).
	BasePath string

	// ReadOnly disables write operations (create, delete).
	// Sign-in still works so the list can be viewed.
	ReadOnly bool

	// CookieName is the name of the session cookie.
	// Defaults to "linkpg_session".
	CookieName string

	// CookieSecure marks the session cookie as Secure.
	// Set to true behind TLS.
	CookieSecure bool

	// RefreshInterval is the SSE heartbeat interval.
	// Defaults to 15 seconds.
	RefreshInterval time.Duration

	// Logger for structured logging.
	// If nil, logging is disabled.
	Logger Logger
}

// Logger interface for structured logging.
// Compatible with log/slog and zap's SugaredLogger adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		CookieName:      DefaultCookieName,
		RefreshInterval: DefaultRefreshInterval,
	}
}

// applyDefaults fills in default values for zero-valued fields.
func (c *Config) applyDefaults() {
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
}

// validate checks the configuration for errors.
func (c *Config) validate() error {
	if c.RefreshInterval < time.Second {
		return ErrInvalidConfig
	}
	return nil
}
