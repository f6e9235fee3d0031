package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"event-console/internal/config"
	"event-console/internal/models"
)

// ImageBounds is the box an uploaded image is fitted into
type ImageBounds struct {
	Width  int
	Height int
}

// ImageService fits uploaded images to per-hint bounds and stores them
type ImageService struct {
	storage  StorageService
	bounds   map[string]ImageBounds
	maxBytes int64
	now      func() time.Time
}

// NewImageService creates an image service with bounds from storage config
func NewImageService(storage StorageService, cfg config.StorageConfig) *ImageService {
	return &ImageService{
		storage: storage,
		bounds: map[string]ImageBounds{
			HintLayouts:    {Width: cfg.LayoutMaxWidth, Height: cfg.LayoutMaxHeight},
			HintSignatures: {Width: cfg.SignatureWidth, Height: cfg.SignatureHeight},
		},
		maxBytes: cfg.MaxUploadBytes,
		now:      time.Now,
	}
}

// Upload stores an image under pathHint and returns its public URL
func (s *ImageService) Upload(ctx context.Context, reader io.Reader, filename, pathHint string) (string, error) {
	stored, err := s.UploadImage(ctx, reader, filename, pathHint)
	if err != nil {
		return "", err
	}
	return stored.URL, nil
}

// Remove deletes an image previously returned by Upload. URLs that do not
// point at one of our upload paths, or whose object is already gone, are
// left alone.
func (s *ImageService) Remove(ctx context.Context, url string) error {
	key, ok := s.keyFromURL(url)
	if !ok {
		return nil
	}

	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check image %s: %w", key, err)
	}
	if !exists {
		return nil
	}

	if err := s.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}
	return nil
}

// keyFromURL recovers hint/YYYY/MM/DD/<file> from a public URL
func (s *ImageService) keyFromURL(url string) (string, bool) {
	for hint := range s.bounds {
		if idx := strings.LastIndex(url, "/"+hint+"/"); idx >= 0 {
			key := url[idx+1:]
			if strings.Count(key, "/") == 4 {
				return key, true
			}
		}
	}
	return "", false
}

// UploadImage decodes, fits and stores an image. Signatures are always
// stored as PNG to keep transparency; other images keep their format.
func (s *ImageService) UploadImage(ctx context.Context, reader io.Reader, filename, pathHint string) (*StoredImage, error) {
	bounds, ok := s.bounds[pathHint]
	if !ok {
		return nil, models.NewValidationError("path_hint", fmt.Sprintf("unknown upload target %q", pathHint))
	}

	data, err := s.readLimited(reader)
	if err != nil {
		return nil, err
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewValidationError("file", "file is not a supported image")
	}
	if !isValidImageFormat(format) {
		return nil, models.NewValidationError("file", fmt.Sprintf("unsupported image format: %s", format))
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
	}

	if bounds.Width > 0 && bounds.Height > 0 {
		img = imaging.Fit(img, bounds.Width, bounds.Height, imaging.Lanczos)
	}

	if pathHint == HintSignatures {
		format = "png"
	}

	encoded, err := encodeImage(img, format)
	if err != nil {
		return nil, err
	}

	key := s.generateImageKey(pathHint, format)
	url, err := s.storage.Upload(ctx, key, bytes.NewReader(encoded), getContentType(format), int64(len(encoded)))
	if err != nil {
		return nil, models.NewIOError("upload", err)
	}

	size := img.Bounds()
	return &StoredImage{
		Key:         key,
		URL:         url,
		Size:        int64(len(encoded)),
		ContentType: getContentType(format),
		Width:       size.Dx(),
		Height:      size.Dy(),
	}, nil
}

func (s *ImageService) readLimited(reader io.Reader) ([]byte, error) {
	if s.maxBytes <= 0 {
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(reader, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, models.NewValidationError("file",
			fmt.Sprintf("image exceeds maximum allowed size of %d bytes", s.maxBytes))
	}
	return data, nil
}

func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// generateImageKey builds hint/YYYY/MM/DD/<uuid>.<ext>
func (s *ImageService) generateImageKey(pathHint, format string) string {
	ext := format
	if ext == "jpeg" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s/%s/%s.%s", pathHint, s.now().Format("2006/01/02"), uuid.NewString(), ext)
}

func isValidImageFormat(format string) bool {
	switch format {
	case "jpeg", "png":
		return true
	default:
		return false
	}
}

func getContentType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
