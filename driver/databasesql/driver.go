// Package databasesql provides a database/sql driver implementation for linkpg.
//
// This driver works with any database/sql-compatible PostgreSQL driver
// (lib/pq, pgx stdlib). It cannot hold a dedicated LISTEN connection, so
// change detection falls back to polling in the notifier.
//
// Usage:
//
//	db, _ := sql.Open("postgres", databaseURL)
//	drv := databasesql.New(db)
//	client, _ := linkpg.NewClient(drv, nil)
package databasesql

import (
	"context"
	"database/sql"

	"github.com/linkpg/linkpg/driver"
	"github.com/linkpg/linkpg/storage"
)

// Driver implements driver.Driver for database/sql.
type Driver struct {
	db *sql.DB
}

// New creates a new database/sql driver with the given database handle.
func New(db *sql.DB) *Driver {
	return &Driver{db: db}
}

// GetExecutor returns an executor for non-transactional operations.
func (d *Driver) GetExecutor() driver.Executor {
	return &Executor{db: d.db}
}

// UnwrapExecutor converts a *sql.Tx to an ExecutorTx.
func (d *Driver) UnwrapExecutor(tx *sql.Tx) driver.ExecutorTx {
	return &ExecutorTx{tx: tx}
}

// Begin starts a new transaction and returns an ExecutorTx.
func (d *Driver) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &ExecutorTx{tx: tx}, nil
}

// PoolIsSet returns true if the driver has a database handle configured.
func (d *Driver) PoolIsSet() bool {
	return d.db != nil
}

// GetStore returns a Store implementation using this driver.
func (d *Driver) GetStore() storage.Store {
	return NewStore(d)
}

// DB returns the underlying *sql.DB for advanced usage.
func (d *Driver) DB() *sql.DB {
	return d.db
}

// SupportsListener returns false; database/sql pools connections and
// cannot dedicate one to LISTEN.
func (d *Driver) SupportsListener() bool {
	return false
}

// SupportsNotify returns true as NOTIFY is plain SQL.
func (d *Driver) SupportsNotify() bool {
	return true
}

// GetListener returns nil; use the notifier's polling fallback instead.
func (d *Driver) GetListener(ctx context.Context) (driver.Listener, error) {
	return nil, driver.ErrListenerNotSupported
}

// GetNotifier returns a Notifier for sending PostgreSQL notifications.
func (d *Driver) GetNotifier() driver.Notifier {
	return &Notifier{db: d.db}
}

// Notifier implements driver.Notifier using the database handle.
type Notifier struct {
	db *sql.DB
}

// Notify sends a NOTIFY on the given channel.
func (n *Notifier) Notify(ctx context.Context, channel, payload string) error {
	_, err := n.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", channel, payload)
	return err
}

// Compile-time check
var _ driver.Driver[*sql.Tx] = (*Driver)(nil)
