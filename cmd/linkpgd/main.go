package main

import (
	"context"
	"log"

	"github.com/linkpg/linkpg/internal/app"
)

func main() {
	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("linkpgd failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("linkpgd exited with error: %v", err)
	}
}
