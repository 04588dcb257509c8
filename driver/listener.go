package driver

import "context"

// Notification represents a PostgreSQL NOTIFY notification.
type Notification struct {
	// Channel is the notification channel name.
	Channel string

	// Payload is the notification payload (may be empty).
	Payload string
}

// Listener provides PostgreSQL LISTEN/NOTIFY functionality.
// This interface is only implemented by drivers that support dedicated
// listener connections (pgx/v5). The database/sql driver cannot support
// this because it uses a connection pool that doesn't maintain a dedicated
// connection for listening.
//
// For drivers that don't support Listener, the notifier falls back to
// polling at a configurable interval.
type Listener interface {
	// Listen starts listening on the specified channel.
	// Multiple channels can be listened to simultaneously.
	Listen(ctx context.Context, channel string) error

	// Unlisten stops listening on the specified channel.
	Unlisten(ctx context.Context, channel string) error

	// WaitForNotification waits for a notification on any subscribed channel.
	// The context can be used to cancel the wait.
	// Returns a Notification on success, or an error if:
	//   - The context is cancelled
	//   - The connection is lost
	//   - The listener is closed
	WaitForNotification(ctx context.Context) (*Notification, error)

	// Ping checks if the listener connection is healthy.
	Ping(ctx context.Context) error

	// Close closes the listener connection.
	// After closing, the listener cannot be used.
	Close(ctx context.Context) error

	// IsClosed returns true if the listener has been closed.
	IsClosed() bool
}

// Notifier provides the ability to send NOTIFY notifications.
// Both pgx/v5 and database/sql drivers support this since NOTIFY
// is just a regular SQL command that works through any connection.
type Notifier interface {
	// Notify sends a notification on the specified channel with an optional payload.
	// The notification is sent immediately (not queued for transaction commit).
	Notify(ctx context.Context, channel, payload string) error
}

// Notification channel names used by linkpg.
const (
	// ChannelBookmarksChanged is notified whenever a row in the bookmarks
	// table is inserted, updated, or deleted, regardless of which
	// connection caused the write. The schema installs a trigger that
	// emits this from inside PostgreSQL, so writes from other processes
	// are observed too.
	//
	// Payload contains JSON: {"op": "INSERT|UPDATE|DELETE", "id": "...", "owner": "..."}
	// Consumers must not rely on the payload; it is advisory only and a
	// full refetch is the sole consistency mechanism.
	ChannelBookmarksChanged = "linkpg_bookmarks_changed"
)
