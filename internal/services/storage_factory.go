package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"event-console/internal/config"
)

// StorageFactory builds the blob store from configuration
type StorageFactory struct {
	config *config.Config
	logger *logrus.Logger
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config, logger *logrus.Logger) *StorageFactory {
	return &StorageFactory{config: cfg, logger: logger}
}

// CreateStorageService returns R2 backed by local disk, or local disk alone
// when R2 is not configured or fails its health check
func (f *StorageFactory) CreateStorageService(ctx context.Context) StorageService {
	local := NewLocalStorageService(f.config.Storage.LocalPath, f.config.Storage.LocalURL, f.logger)

	r2, err := NewR2Service(f.config.R2, f.logger)
	if err != nil {
		f.logger.WithError(err).Warn("R2 unavailable, using local storage only")
		return local
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := r2.HealthCheck(checkCtx); err != nil {
		f.logger.WithError(err).Warn("R2 health check failed, using local storage only")
		return local
	}

	f.logger.WithField("bucket", f.config.R2.BucketName).Info("R2 storage initialized")
	return NewStorageServiceWithFallback(r2, local, f.logger)
}

// SetupR2Bucket creates the bucket and its CORS rules
func (f *StorageFactory) SetupR2Bucket(ctx context.Context) error {
	r2, err := NewR2Service(f.config.R2, f.logger)
	if err != nil {
		return fmt.Errorf("failed to create R2 service: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := r2.CreateBucket(ctx); err != nil {
		return fmt.Errorf("failed to create R2 bucket: %w", err)
	}
	if err := r2.SetBucketCORS(ctx, f.config.Server.AllowedOrigins); err != nil {
		return fmt.Errorf("failed to set R2 bucket CORS: %w", err)
	}
	return nil
}

// ValidateR2Configuration reports the first missing R2 setting
func (f *StorageFactory) ValidateR2Configuration() error {
	cfg := f.config.R2
	switch {
	case cfg.AccountID == "" && cfg.Endpoint == "":
		return fmt.Errorf("R2_ACCOUNT_ID or R2_ENDPOINT is required")
	case cfg.AccessKeyID == "":
		return fmt.Errorf("R2_ACCESS_KEY_ID is required")
	case cfg.SecretAccessKey == "":
		return fmt.Errorf("R2_SECRET_ACCESS_KEY is required")
	case cfg.BucketName == "":
		return fmt.Errorf("R2_BUCKET_NAME is required")
	}
	return nil
}
