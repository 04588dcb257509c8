// Command linkpg-migrate applies or rolls back the database schema.
//
// Usage:
//
//	DATABASE_URL=postgres://... linkpg-migrate up
//	DATABASE_URL=postgres://... linkpg-migrate down
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/linkpg/linkpg/migrations"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL must be set")
	}

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	var err error
	switch direction {
	case "up":
		err = migrations.Up(dsn)
	case "down":
		err = migrations.Down(dsn)
	default:
		log.Fatalf("unknown direction %q (want up or down)", direction)
	}

	if errors.Is(err, migrations.ErrNoChange) {
		fmt.Println("no pending migrations")
		return
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", direction, err)
	}
	fmt.Printf("migrate %s: done\n", direction)
}
