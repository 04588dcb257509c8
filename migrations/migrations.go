// Package migrations runs database migrations from embedded SQL files
// using golang-migrate.
//
// The schema installs the bookmarks table together with the trigger that
// emits linkpg_bookmarks_changed notifications on every row change, so
// change events fire for writes from any connection, not just this
// process.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var migrationFS embed.FS

// ErrNoChange is returned when Up/Down has nothing to do.
var ErrNoChange = migrate.ErrNoChange

// Up applies all pending migrations using the provided DSN.
// Returns ErrNoChange when the schema is already at the latest version.
func Up(dsn string) error {
	return run(dsn, "up")
}

// Down rolls back all migrations using the provided DSN.
func Down(dsn string) error {
	return run(dsn, "down")
}

func run(dsn, direction string) error {
	if dsn == "" {
		return errors.New("database URL is not set")
	}

	sourceDriver, err := iofs.New(migrationFS, "sql")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dsn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	switch direction {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	}
	return nil
}
