package linkpg

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/linkpg/linkpg/driver"
	"github.com/linkpg/linkpg/notifier"
	"github.com/linkpg/linkpg/storage"
)

// Client wires a database driver to the change-notification stream and
// hands out synchronizers bound to it.
//
// TTx is the native transaction type from the driver (e.g., pgx.Tx, *sql.Tx).
type Client[TTx any] struct {
	driver driver.Driver[TTx]
	store  storage.Store
	notif  *notifier.Notifier
	config *ClientConfig

	mu    sync.Mutex
	syncs []*Synchronizer

	started atomic.Bool
}

// NewClient creates a new client with the given driver and configuration.
// The transaction type TTx is inferred from the driver argument.
//
// Example:
//
//	drv := pgxv5.New(pool)
//	client, err := linkpg.NewClient(drv, nil)
func NewClient[TTx any](drv driver.Driver[TTx], config *ClientConfig) (*Client[TTx], error) {
	if drv == nil || !drv.PoolIsSet() {
		return nil, fmt.Errorf("%w: driver with a configured pool is required", ErrInvalidConfig)
	}
	if config == nil {
		config = DefaultClientConfig()
	} else {
		config.applyDefaults()
	}

	c := &Client[TTx]{
		driver: drv,
		store:  drv.GetStore(),
		config: config,
	}

	var getListener func(ctx context.Context) (driver.Listener, error)
	if drv.SupportsListener() {
		getListener = drv.GetListener
	}
	c.notif = notifier.New(getListener, drv.GetNotifier(), &notifier.Config{
		ReconnectDelay: config.ReconnectDelay,
		PollInterval:   config.PollInterval,
		OnError:        config.OnError,
		// Events may have been missed during the outage, so every
		// synchronizer refetches once the listener is back.
		OnReconnect: c.invalidateAll,
	})

	return c, nil
}

// Start begins delivering change notifications. It must be called before
// synchronizers can observe remote writes.
func (c *Client[TTx]) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	if err := c.notif.Start(ctx); err != nil {
		c.started.Store(false)
		return err
	}
	return nil
}

// Stop deactivates all synchronizers created through this client and
// stops the change-notification stream.
func (c *Client[TTx]) Stop(ctx context.Context) error {
	if !c.started.Load() {
		return ErrNotStarted
	}

	c.mu.Lock()
	syncs := make([]*Synchronizer, len(c.syncs))
	copy(syncs, c.syncs)
	c.mu.Unlock()

	for _, s := range syncs {
		s.Deactivate()
	}

	if err := c.notif.Stop(ctx); err != nil {
		return err
	}
	c.started.Store(false)
	return nil
}

// NewSynchronizer creates a synchronizer wired to this client's store and
// change stream. config may be nil, in which case the client's fetch
// timeout, error callback, and hooks are used.
func (c *Client[TTx]) NewSynchronizer(config *SyncConfig) *Synchronizer {
	if config == nil {
		config = &SyncConfig{
			FetchTimeout: c.config.FetchTimeout,
			OnError:      c.config.OnError,
			Hooks:        c.config.Hooks,
		}
	}

	s := NewSynchronizer(c.store, c.notif, config)

	c.mu.Lock()
	c.syncs = append(c.syncs, s)
	c.mu.Unlock()

	return s
}

// Store returns the underlying bookmark store.
func (c *Client[TTx]) Store() storage.Store {
	return c.store
}

// Notifier returns the underlying notifier for advanced usage.
func (c *Client[TTx]) Notifier() *notifier.Notifier {
	return c.notif
}

// Driver returns the underlying driver.
func (c *Client[TTx]) Driver() driver.Driver[TTx] {
	return c.driver
}

// IsRunning returns true if the client has been started.
func (c *Client[TTx]) IsRunning() bool {
	return c.started.Load()
}

// invalidateAll schedules a refetch on every synchronizer. Inactive ones
// ignore it.
func (c *Client[TTx]) invalidateAll() {
	c.mu.Lock()
	syncs := make([]*Synchronizer, len(c.syncs))
	copy(syncs, c.syncs)
	c.mu.Unlock()

	for _, s := range syncs {
		s.Invalidate()
	}
}
