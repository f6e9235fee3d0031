package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"event-console/internal/models"
)

// maxJSONBody caps decoded request bodies
const maxJSONBody = 1 << 20

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta contains metadata about the response
type Meta struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

func newMeta(r *http.Request) *Meta {
	return &Meta{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: chimw.GetReqID(r.Context()),
	}
}

func writeJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondSuccess(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    newMeta(r),
	})
}

func respondErrorWithCode(w http.ResponseWriter, r *http.Request, status int, message string, errs interface{}) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Message: message,
		Errors:  errs,
		Meta:    newMeta(r),
	})
}

// respondError maps the domain error taxonomy onto HTTP statuses
func respondError(w http.ResponseWriter, r *http.Request, logger *logrus.Logger, err error) {
	var (
		validationErr *models.ValidationError
		ioErr         *models.IOError
		exportErr     *models.ExportError
	)

	switch {
	case errors.As(err, &validationErr):
		respondErrorWithCode(w, r, http.StatusUnprocessableEntity, validationErr.Message, []*models.ValidationError{validationErr})
	case errors.Is(err, models.ErrInProgress):
		respondErrorWithCode(w, r, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, models.ErrStepLocked), errors.Is(err, models.ErrInvalidTransition):
		respondErrorWithCode(w, r, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, models.ErrDraftNotFound),
		errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrInvoiceNotFound),
		errors.Is(err, models.ErrLineItemNotFound),
		errors.Is(err, models.ErrColumnNotFound):
		respondErrorWithCode(w, r, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, models.ErrInvalidInput):
		respondErrorWithCode(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.As(err, &ioErr):
		logger.WithContext(r.Context()).WithError(ioErr.Err).WithField("op", ioErr.Op).Warn("collaborator call failed")
		respondErrorWithCode(w, r, http.StatusBadGateway, ioErr.Message, nil)
	case errors.As(err, &exportErr):
		logger.WithContext(r.Context()).WithError(err).Error("export failed")
		respondErrorWithCode(w, r, http.StatusInternalServerError, exportErr.Message, nil)
	default:
		logger.WithContext(r.Context()).WithError(err).Error("unhandled request error")
		respondErrorWithCode(w, r, http.StatusInternalServerError, "internal server error", nil)
	}
}

// requestDecoder decodes and validates JSON request bodies
type requestDecoder struct {
	validate *validator.Validate
}

func newRequestDecoder() *requestDecoder {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestDecoder{validate: v}
}

// decode reads r's body into dst and validates it. Errors are
// ValidationErrors or wrap ErrInvalidInput.
func (d *requestDecoder) decode(r *http.Request, dst interface{}) error {
	body := io.LimitReader(r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", models.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed JSON: %v", models.ErrInvalidInput, err)
	}

	if err := d.validate.StructCtx(r.Context(), dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return models.NewValidationError(fe.Field(), fmt.Sprintf("invalid '%s' with value '%v'", fe.Field(), fe.Value()))
		}
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return nil
}
