package linkpg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linkpg/linkpg/driver"
	"github.com/linkpg/linkpg/storage"
)

// mockDriver backs a Client with the in-memory store. It reports no LISTEN
// support, so the client's notifier falls back to polling.
type mockDriver struct {
	store   *mockStore
	poolSet bool
}

func newMockDriver() *mockDriver {
	return &mockDriver{store: newMockStore(), poolSet: true}
}

func (d *mockDriver) GetExecutor() driver.Executor { return nil }

func (d *mockDriver) UnwrapExecutor(tx struct{}) driver.ExecutorTx { return nil }

func (d *mockDriver) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	return nil, errors.New("transactions not supported")
}

func (d *mockDriver) PoolIsSet() bool { return d.poolSet }

func (d *mockDriver) GetStore() storage.Store { return d.store }

func (d *mockDriver) SupportsListener() bool { return false }

func (d *mockDriver) SupportsNotify() bool { return false }

func (d *mockDriver) GetListener(ctx context.Context) (driver.Listener, error) {
	return nil, driver.ErrListenerNotSupported
}

func (d *mockDriver) GetNotifier() driver.Notifier { return nil }

var _ driver.Driver[struct{}] = (*mockDriver)(nil)

func TestNewClient_RequiresConfiguredDriver(t *testing.T) {
	if _, err := NewClient[struct{}](nil, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewClient(nil) error = %v, want ErrInvalidConfig", err)
	}

	if _, err := NewClient(&mockDriver{poolSet: false}, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewClient(unconfigured driver) error = %v, want ErrInvalidConfig", err)
	}
}

func TestClient_StartStop(t *testing.T) {
	client, err := NewClient(newMockDriver(), nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	ctx := context.Background()

	if client.IsRunning() {
		t.Error("IsRunning() = true before Start")
	}
	if err := client.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !client.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}
	if err := client.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}

	if err := client.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if client.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
	if err := client.Stop(ctx); !errors.Is(err, ErrNotStarted) {
		t.Errorf("second Stop() error = %v, want ErrNotStarted", err)
	}
}

func TestClient_StopDeactivatesSynchronizers(t *testing.T) {
	drv := newMockDriver()
	client, err := NewClient(drv, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	ctx := context.Background()
	if err := client.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	sync := client.NewSynchronizer(nil)
	if err := sync.Activate(ctx, "alice"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	waitUntil(t, func() bool { return sync.State() == StateActive }, "synchronizer did not activate")

	if err := client.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got := sync.State(); got != StateTornDown {
		t.Errorf("State() after Stop = %v, want %v", got, StateTornDown)
	}
}

func TestClient_PollingDrivesRefetch(t *testing.T) {
	drv := newMockDriver()
	client, err := NewClient(drv, &ClientConfig{PollInterval: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	ctx := context.Background()
	if err := client.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer client.Stop(ctx)

	drv.store.seed("alice", "existing", time.Now())

	sync := client.NewSynchronizer(nil)
	if err := sync.Activate(ctx, "alice"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	defer sync.Deactivate()

	waitUntil(t, func() bool { return len(sync.Bookmarks()) == 1 }, "initial fetch did not land")

	// A write the synchronizer never saw; only polling can surface it.
	drv.store.seed("alice", "remote", time.Now())

	waitUntil(t, func() bool { return len(sync.Bookmarks()) == 2 }, "poll-driven refetch did not land")
}
