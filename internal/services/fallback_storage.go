package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// LocalStorageService keeps blobs on local disk. It serves development and
// takes over when R2 is not configured or not reachable.
type LocalStorageService struct {
	basePath string
	baseURL  string
	logger   *logrus.Logger
}

// NewLocalStorageService creates the base directory if needed
func NewLocalStorageService(basePath, baseURL string, logger *logrus.Logger) *LocalStorageService {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.WithError(err).WithField("path", basePath).Warn("failed to create storage directory")
	}

	return &LocalStorageService{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger,
	}
}

func (l *LocalStorageService) path(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(strings.TrimPrefix(key, "/")))
}

// Upload writes the blob under basePath. A negative size skips the length
// check.
func (l *LocalStorageService) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	fullPath := l.path(key)
	if !strings.HasPrefix(fullPath, filepath.Clean(l.basePath)+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}
	if size >= 0 && written != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, wrote %d bytes", size, written)
	}

	l.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":          key,
		"content_type": contentType,
		"bytes":        written,
	}).Debug("stored blob on local disk")

	return l.GetURL(key), nil
}

// Delete removes the blob and any directories left empty
func (l *LocalStorageService) Delete(ctx context.Context, key string) error {
	fullPath := l.path(key)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	l.cleanupEmptyDirs(filepath.Dir(fullPath))
	return nil
}

// GetURL returns the public URL for a key
func (l *LocalStorageService) GetURL(key string) string {
	return fmt.Sprintf("%s/%s", l.baseURL, strings.TrimPrefix(key, "/"))
}

// Exists checks if the blob is on disk
func (l *LocalStorageService) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(l.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if file exists: %w", err)
	}
	return true, nil
}

func (l *LocalStorageService) cleanupEmptyDirs(dir string) {
	base := filepath.Clean(l.basePath)
	for dir != base && strings.HasPrefix(dir, base) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// StorageServiceWithFallback writes to primary and retries on fallback
type StorageServiceWithFallback struct {
	primary  StorageService
	fallback StorageService
	logger   *logrus.Logger
}

// NewStorageServiceWithFallback wraps primary with a fallback store
func NewStorageServiceWithFallback(primary, fallback StorageService, logger *logrus.Logger) *StorageServiceWithFallback {
	return &StorageServiceWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Upload tries primary first. The reader must be seekable for the retry.
func (s *StorageServiceWithFallback) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	url, err := s.primary.Upload(ctx, key, reader, contentType, size)
	if err == nil {
		return url, nil
	}

	s.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("primary storage failed, using fallback")

	seeker, ok := reader.(io.Seeker)
	if !ok {
		return "", fmt.Errorf("primary storage failed and cannot reset reader for fallback: %w", err)
	}
	if _, seekErr := seeker.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("failed to rewind upload for fallback: %w", seekErr)
	}

	return s.fallback.Upload(ctx, key, reader, contentType, size)
}

// Delete removes the key from both stores; it fails only if both fail
func (s *StorageServiceWithFallback) Delete(ctx context.Context, key string) error {
	primaryErr := s.primary.Delete(ctx, key)
	fallbackErr := s.fallback.Delete(ctx, key)
	if primaryErr != nil && fallbackErr != nil {
		return fmt.Errorf("both storages failed - primary: %v, fallback: %v", primaryErr, fallbackErr)
	}
	return nil
}

// GetURL returns the primary URL
func (s *StorageServiceWithFallback) GetURL(key string) string {
	return s.primary.GetURL(key)
}

// Exists checks primary, then fallback
func (s *StorageServiceWithFallback) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := s.primary.Exists(ctx, key)
	if err == nil && exists {
		return true, nil
	}
	return s.fallback.Exists(ctx, key)
}
