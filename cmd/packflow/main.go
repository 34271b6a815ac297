// packflow is the one-shot inspection CLI for the fulfillment tracker.
//
// Usage: packflow <orders|order|purchase|payments|manifest|dispatches> [args]
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"packflow/internal/adapters/cli"
	"packflow/internal/app"
	"packflow/internal/db"
	"packflow/internal/store"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	recordStore, err := store.NewPostgres(ctx, pool)
	if err != nil {
		log.Fatalf("record store: %v", err)
	}

	svc := app.NewApplicationService(app.NewServices(recordStore), app.Credentials{})
	cli.Run(ctx, svc, os.Args[1:])
}
