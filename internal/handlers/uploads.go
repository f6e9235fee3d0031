package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/sirupsen/logrus"

	"event-console/internal/models"
	"event-console/internal/services"
)

// multipartOverhead leaves room for form boundaries around the file part
const multipartOverhead = 64 << 10

// UploadHandler accepts venue layout images for the event catalog
type UploadHandler struct {
	uploader  services.Uploader
	maxUpload int64
	logger    *logrus.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploader services.Uploader, maxUpload int64, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		uploader:  uploader,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// UploadLayout stores a venue layout image and returns its URL
func (h *UploadHandler) UploadLayout(w http.ResponseWriter, r *http.Request) {
	file, filename, err := readUpload(w, r, h.maxUpload)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(r.Context(), file, filename, services.HintLayouts)
	if err != nil {
		if !models.IsValidationError(err) && !models.IsIOError(err) {
			err = models.NewIOError("upload layout", err)
		}
		respondError(w, r, h.logger, err)
		return
	}

	respondSuccess(w, r, http.StatusCreated, "Layout uploaded", map[string]string{"url": url})
}

// readUpload extracts the "file" part of a multipart request
func readUpload(w http.ResponseWriter, r *http.Request, maxUpload int64) (multipart.File, string, error) {
	if maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload+multipartOverhead)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", models.NewValidationError("file", fmt.Sprintf("file exceeds maximum allowed size of %d bytes", maxUpload))
		}
		return nil, "", fmt.Errorf("%w: expected multipart form: %v", models.ErrInvalidInput, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", models.NewValidationError("file", "file is required")
	}
	return file, header.Filename, nil
}
