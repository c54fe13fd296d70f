package app

import (
	"errors"
	"fmt"

	"github.com/tacogips/ionstart/internal/prompt"
	"github.com/tacogips/ionstart/internal/start/catalog"
	"github.com/tacogips/ionstart/internal/start/schema"
	"github.com/tacogips/ionstart/internal/start/wizard"
)

// AppErrorType represents the type of application error.
type AppErrorType int

const (
	// FatalAbort indicates a condition that stops the pipeline, such as a
	// missing tool or a prompt that cannot be answered.
	FatalAbort AppErrorType = iota
	// ValidationFailed indicates invalid user input.
	ValidationFailed
	// TemplateFetchFailed indicates the starter could not be resolved.
	TemplateFetchFailed
	// AcquisitionFailed indicates the download, extraction or clone failed.
	AcquisitionFailed
	// UserDeclined indicates the user answered no to a confirmation.
	UserDeclined
	// InvalidSchema indicates a creation plan that cannot be acted upon.
	InvalidSchema
)

func (t AppErrorType) String() string {
	switch t {
	case FatalAbort:
		return "fatal"
	case ValidationFailed:
		return "validation"
	case TemplateFetchFailed:
		return "template fetch"
	case AcquisitionFailed:
		return "acquisition"
	case UserDeclined:
		return "declined"
	case InvalidSchema:
		return "invalid schema"
	default:
		return "unknown"
	}
}

// AppError represents an application-layer error.
type AppError struct {
	// Type is the error type.
	Type AppErrorType
	// Message is the error message.
	Message string
	// Cause is the underlying error.
	Cause error
}

// Error returns the error message.
func (e *AppError) Error() string {
	if e.Cause != nil {
		if e.Message == "" {
			return e.Cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError.
func NewAppError(errType AppErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewFatalError creates a fatal abort error.
func NewFatalError(message string, cause error) *AppError {
	return NewAppError(FatalAbort, message, cause)
}

// NewValidationError creates a validation error.
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ValidationFailed, message, cause)
}

// NewTemplateFetchError creates a template fetch error.
func NewTemplateFetchError(message string, cause error) *AppError {
	return NewAppError(TemplateFetchFailed, message, cause)
}

// NewAcquisitionError creates an acquisition error.
func NewAcquisitionError(message string, cause error) *AppError {
	return NewAppError(AcquisitionFailed, message, cause)
}

// NewDeclinedError creates a user declined error.
func NewDeclinedError(message string, cause error) *AppError {
	return NewAppError(UserDeclined, message, cause)
}

// NewInvalidSchemaError creates an invalid schema error.
func NewInvalidSchemaError(message string, cause error) *AppError {
	return NewAppError(InvalidSchema, message, cause)
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t AppErrorType) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Type == t
}

// classify maps errors of the resolution stage onto the AppError taxonomy.
// Errors that are already classified are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return err
	}

	var ve *schema.ValidationError
	var ge *schema.GitRequiredError
	switch {
	case errors.Is(err, schema.ErrDeclined):
		return NewDeclinedError("", err)
	case errors.As(err, &ve):
		return NewValidationError("", err)
	case errors.Is(err, catalog.ErrTemplateNotFound):
		return NewTemplateFetchError("", err)
	case errors.As(err, &ge):
		return NewFatalError("", err)
	case errors.Is(err, prompt.ErrNonInteractive):
		return NewFatalError("", err)
	case errors.Is(err, wizard.ErrNoSuchApp):
		return NewFatalError("", err)
	}
	return NewFatalError("", err)
}
