package services

import (
	"context"
	"io"
)

// StorageService defines the interface for blob storage operations
type StorageService interface {
	// Upload stores a blob and returns its public URL
	Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error)

	// Delete removes a blob
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for a key
	GetURL(key string) string

	// Exists checks if a blob exists
	Exists(ctx context.Context, key string) (bool, error)
}

// Upload path hints. Each hint has its own fitting bounds.
const (
	HintLayouts    = "layouts"
	HintSignatures = "signatures"
)

// StoredImage describes an image after fitting and upload
type StoredImage struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}
