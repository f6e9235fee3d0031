package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"event-console/internal/config"
	"event-console/internal/database"
	"event-console/internal/logging"
)

func main() {
	var (
		statusFlag = flag.Bool("status", false, "Show migration status")
		upFlag     = flag.Bool("up", false, "Run pending migrations")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log)
	ctx := context.Background()

	if !*statusFlag && !*upFlag {
		fmt.Println("Usage:")
		fmt.Println("  migrate -status   # Show migration status")
		fmt.Println("  migrate -up       # Run pending migrations")
		os.Exit(1)
	}

	db, err := database.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if *upFlag {
		if err := db.RunMigrations(ctx); err != nil {
			logger.WithError(err).Fatal("failed to run migrations")
		}
		logger.Info("all migrations completed")
	}

	if *statusFlag {
		states, err := db.MigrationStatus(ctx)
		if err != nil {
			logger.WithError(err).Fatal("failed to get migration status")
		}
		for _, s := range states {
			mark := "pending"
			if s.Applied {
				mark = "applied"
			}
			fmt.Printf("%03d  %-8s %s\n", s.Version, mark, s.Name)
		}
	}
}
