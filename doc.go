// Package linkpg provides session-gated live bookmark synchronization for Go.
//
// linkpg is opinionated (PostgreSQL + pgx) and built around one pattern: a
// locally cached, per-identity list of bookmarks kept consistent with a
// shared table through event-driven refetch. Writes go straight to the
// store; the cache is never patched locally. A row-change trigger emits
// LISTEN/NOTIFY events for every insert, update, and delete (from this
// process or any other), and each event triggers a full refetch, so every
// writer converges through a single code path.
//
// # Key Features
//
//   - Per-identity synchronizer with an explicit lifecycle (activate,
//     refresh, teardown) and a snapshot cache
//   - Change notification via PostgreSQL LISTEN/NOTIFY with automatic
//     reconnection, or a polling fallback for database/sql
//   - Stale-response protection: every fetch carries a sequence number and
//     only the newest completed fetch may replace the cache
//   - Fetch failures keep the last-good cache and surface a typed error
//   - OAuth2 session management with pluggable session stores (see auth)
//   - Embedded web UI with live updates (see ui)
//
// # Quick Start
//
// Create a client with the pgx/v5 driver:
//
//	pool, _ := pgxpool.New(ctx, connString)
//	drv := pgxv5.New(pool)
//	client, _ := linkpg.NewClient(drv, nil)
//	client.Start(ctx)
//	defer client.Stop(ctx)
//
// Bind a synchronizer to a signed-in identity:
//
//	sync := client.NewSynchronizer(nil)
//	sync.Activate(ctx, userID)
//	defer sync.Deactivate()
//
//	sync.Create(ctx, "Docs", "https://docs.example.com")
//	for _, b := range sync.Bookmarks() {
//	    fmt.Println(b.Title, b.URL)
//	}
//
// The cache updates on its own: once another session (or this one) writes
// to the table, the change event arrives and the synchronizer refetches.
// Register a listener to observe updates:
//
//	unsub := sync.OnChange(func(bookmarks []*storage.Bookmark) {
//	    render(bookmarks)
//	})
//	defer unsub()
//
// # Consistency Model
//
// The cache is a read-only, disposable projection. At any settled moment
// (no fetch in flight, no unconsumed change notice) it equals the set of
// rows owned by the bound identity, ordered by created_at descending.
// Between a remote write and the next completed refetch the cache lags;
// that window is inherent to the design and is the price of having one
// convergence path for all writers.
package linkpg
