package main

import (
	"context"
	"fmt"
	"os"

	"event-console/internal/config"
	"event-console/internal/logging"
	"event-console/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log)

	factory := services.NewStorageFactory(cfg, logger)
	if err := factory.ValidateR2Configuration(); err != nil {
		logger.WithError(err).Fatal("R2 configuration validation failed")
	}

	fmt.Println("R2 configuration is valid")
	fmt.Printf("  Bucket:      %s\n", cfg.R2.BucketName)
	fmt.Printf("  Public URL:  %s\n", cfg.R2.PublicURL)
	fmt.Printf("  Local path:  %s\n", cfg.Storage.LocalPath)

	if len(os.Args) < 2 || os.Args[1] != "setup" {
		fmt.Println("\nTo create the bucket and its CORS rules, run: setup-r2 setup")
		return
	}

	if err := factory.SetupR2Bucket(context.Background()); err != nil {
		logger.WithError(err).Fatal("failed to set up R2 bucket")
	}
	logger.WithField("bucket", cfg.R2.BucketName).Info("R2 bucket setup completed")
}
