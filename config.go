package linkpg

import (
	"time"

	"github.com/linkpg/linkpg/hooks"
)

// ClientConfig holds configuration for the Client.
type ClientConfig struct {
	// FetchTimeout bounds each list query issued by synchronizers created
	// through this client (optional). Default: 10 seconds.
	FetchTimeout time.Duration

	// ReconnectDelay is how long to wait before reconnecting the change
	// listener after a disconnect (optional). Default: 5 seconds.
	ReconnectDelay time.Duration

	// PollInterval is the change-detection interval for drivers without
	// LISTEN support (optional). Default: 5 seconds.
	PollInterval time.Duration

	// OnError is called when background operations fail.
	OnError func(err error)

	// Hooks receives fetch and state-transition observations from all
	// synchronizers created through this client.
	Hooks *hooks.Registry
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		FetchTimeout:   10 * time.Second,
		ReconnectDelay: 5 * time.Second,
		PollInterval:   5 * time.Second,
	}
}

// applyDefaults fills in default values for zero-valued fields.
func (c *ClientConfig) applyDefaults() {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 5 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
}
