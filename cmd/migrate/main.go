package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/samirrijal/mietradar/internal/adapters/postgres"
	"github.com/samirrijal/mietradar/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|status>")
	}

	cfg, err := config.Load("mietradar-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		if err := postgres.Migrate(ctx, db.Pool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		log.Println("all migrations applied")
	case "status":
		if err := printStatus(ctx, db.Pool); err != nil {
			log.Fatalf("status: %v", err)
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func printStatus(ctx context.Context, pool postgres.Pool) error {
	names, err := postgres.MigrationNames()
	if err != nil {
		return err
	}
	applied, err := postgres.AppliedMigrations(ctx, pool)
	if err != nil {
		return err
	}
	for _, name := range names {
		state := "pending"
		if applied[name] {
			state = "OK"
		}
		fmt.Printf("%-8s %s\n", state, name)
	}
	return nil
}
