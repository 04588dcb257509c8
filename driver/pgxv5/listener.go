package pgxv5

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linkpg/linkpg/driver"
)

// Listener implements driver.Listener using a dedicated pooled connection.
type Listener struct {
	conn   *pgxpool.Conn
	mu     sync.Mutex
	closed bool
}

// Listen starts listening on the specified channel.
func (l *Listener) Listen(ctx context.Context, channel string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return driver.ErrListenerClosed
	}
	// Channel names are trusted constants; LISTEN does not take bind parameters.
	_, err := l.conn.Exec(ctx, "LISTEN "+pgIdent(channel))
	return err
}

// Unlisten stops listening on the specified channel.
func (l *Listener) Unlisten(ctx context.Context, channel string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return driver.ErrListenerClosed
	}
	_, err := l.conn.Exec(ctx, "UNLISTEN "+pgIdent(channel))
	return err
}

// WaitForNotification blocks until a notification arrives on any
// subscribed channel, the context is cancelled, or the connection fails.
func (l *Listener) WaitForNotification(ctx context.Context) (*driver.Notification, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, driver.ErrListenerClosed
	}
	conn := l.conn
	l.mu.Unlock()

	n, err := conn.Conn().WaitForNotification(ctx)
	if err != nil {
		return nil, err
	}
	return &driver.Notification{Channel: n.Channel, Payload: n.Payload}, nil
}

// Ping checks the health of the listener connection.
func (l *Listener) Ping(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return driver.ErrListenerClosed
	}
	return l.conn.Ping(ctx)
}

// Close releases the dedicated connection back to the pool.
func (l *Listener) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.conn.Release()
	return nil
}

// IsClosed returns true if the listener has been closed.
func (l *Listener) IsClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// pgIdent quotes a channel name as a PostgreSQL identifier.
func pgIdent(name string) string {
	out := make([]byte, 0, len(name)+2)
	out = append(out, '"')
	for i := 0; i < len(name); i++ {
		if name[i] == '"' {
			out = append(out, '"')
		}
		out = append(out, name[i])
	}
	out = append(out, '"')
	return string(out)
}

// Compile-time check
var _ driver.Listener = (*Listener)(nil)
