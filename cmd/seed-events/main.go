package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"event-console/internal/catalog"
	"event-console/internal/config"
	"event-console/internal/database"
	"event-console/internal/logging"
	"event-console/internal/repositories"
)

// seed-events copies the YAML event catalog into the events tables
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	path := flag.String("catalog", cfg.Catalog.Path, "event catalog file")
	flag.Parse()

	logger := logging.New(cfg.Log)
	ctx := context.Background()

	events, err := catalog.Load(*path)
	if err != nil {
		logger.WithError(err).Fatal("failed to load event catalog")
	}

	db, err := database.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	repo := repositories.NewEventRepository(db.DB)
	for _, event := range events.Events() {
		if err := repo.UpsertEvent(ctx, event); err != nil {
			logger.WithError(err).WithField("event_id", event.ID).Fatal("failed to seed event")
		}
		logger.WithField("event_id", event.ID).WithField("categories", len(event.Categories)).Info("event seeded")
	}
}
