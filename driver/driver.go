// Package driver provides database driver abstractions for linkpg.
//
// This package defines the interfaces that database drivers must implement
// to back the bookmark store and its change-notification stream. It enables
// support for multiple database backends (pgx/v5, database/sql) through a
// generic driver pattern.
package driver

import (
	"context"

	"github.com/linkpg/linkpg/storage"
)

// Driver provides database operations for linkpg.
// TTx is the native transaction type (e.g., pgx.Tx for pgx/v5, *sql.Tx for database/sql).
//
// Implementations should be created using the driver-specific New() functions:
//   - github.com/linkpg/linkpg/driver/pgxv5.New(pool)
//   - github.com/linkpg/linkpg/driver/databasesql.New(db)
type Driver[TTx any] interface {
	// GetExecutor returns an executor for non-transactional operations.
	// The returned Executor uses the underlying connection pool.
	GetExecutor() Executor

	// UnwrapExecutor converts a native transaction to an ExecutorTx.
	// This allows linkpg to participate in user-provided transactions.
	UnwrapExecutor(tx TTx) ExecutorTx

	// Begin starts a new transaction and returns an ExecutorTx.
	Begin(ctx context.Context) (ExecutorTx, error)

	// PoolIsSet returns true if the driver has a database pool configured.
	// This is used to validate the driver during client initialization.
	PoolIsSet() bool

	// GetStore returns a Store implementation using this driver.
	GetStore() storage.Store

	// SupportsListener returns true if this driver supports the Listener
	// interface. pgx/v5 supports dedicated listener connections;
	// database/sql does not. When this returns false, the notifier falls
	// back to polling for change detection.
	SupportsListener() bool

	// SupportsNotify returns true if this driver can send NOTIFY commands.
	// Both pgx/v5 and database/sql support this since NOTIFY is just SQL.
	SupportsNotify() bool

	// GetListener returns a Listener for receiving PostgreSQL notifications.
	// Returns nil if SupportsListener() returns false.
	// The returned Listener must be closed when no longer needed.
	GetListener(ctx context.Context) (Listener, error)

	// GetNotifier returns a Notifier for sending PostgreSQL notifications.
	// Returns nil if SupportsNotify() returns false.
	GetNotifier() Notifier
}

// Beginner is an interface for types that can begin transactions.
// This is used internally to handle driver abstraction in non-generic contexts.
type Beginner interface {
	Begin(ctx context.Context) (ExecutorTx, error)
}
