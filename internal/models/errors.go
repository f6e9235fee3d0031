package models

import "errors"

// Common errors used throughout the application
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrLineItemNotFound  = errors.New("line item not found")
	ErrColumnNotFound    = errors.New("column not found")
	ErrDraftNotFound     = errors.New("no draft in session")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrInvalidTransition = errors.New("transition not allowed from current step")
	ErrStepLocked        = errors.New("draft cannot be changed in the current step")
	ErrInProgress        = errors.New("a request for this draft is already in progress")
)

// ValidationError is a failed local precondition. The draft that produced it
// is left untouched.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error for the given field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IOError wraps a failed persistence, upload or network call. Message carries
// the collaborator's own error text so it can be shown as-is.
type IOError struct {
	Op      string
	Message string
	Err     error
}

func (e *IOError) Error() string {
	return e.Message
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError wraps err as an IOError for operation op
func NewIOError(op string, err error) *IOError {
	msg := op + " failed"
	if err != nil {
		msg = err.Error()
	}
	return &IOError{Op: op, Message: msg, Err: err}
}

// ExportError wraps a failed PDF or image generation. It never blocks a
// submission.
type ExportError struct {
	Message string
	Err     error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// NewExportError creates an export error
func NewExportError(message string, err error) *ExportError {
	return &ExportError{Message: message, Err: err}
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsIOError reports whether err is or wraps an IOError
func IsIOError(err error) bool {
	var target *IOError
	return errors.As(err, &target)
}

// IsExportError reports whether err is or wraps an ExportError
func IsExportError(err error) bool {
	var target *ExportError
	return errors.As(err, &target)
}
