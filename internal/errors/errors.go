package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation         ErrorType = "validation"
	ErrorTypeContentRejected    ErrorType = "content_rejected"
	ErrorTypeExtractionFailed   ErrorType = "content_extraction_failed"
	ErrorTypeFetchFailed        ErrorType = "content_fetch_failed"
	ErrorTypeUnknownInstruction ErrorType = "unknown_instruction"
	ErrorTypeMissingInstruction ErrorType = "missing_instruction"
	ErrorTypeModelInvocation    ErrorType = "model_invocation_failed"
	ErrorTypeConfiguration      ErrorType = "configuration"

	// Gateway failure taxonomy
	ErrorTypeConnection   ErrorType = "connection_failed"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	ErrorTypeUpstream     ErrorType = "upstream_error"

	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newAppError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewContentRejectedError is returned when an upload is refused before extraction.
func NewContentRejectedError(message string, cause error) *AppError {
	return newAppError(ErrorTypeContentRejected, http.StatusBadRequest, message, cause)
}

// NewExtractionError wraps a document extractor failure.
func NewExtractionError(message string, cause error) *AppError {
	return newAppError(ErrorTypeExtractionFailed, http.StatusInternalServerError, message, cause)
}

// NewFetchError wraps a web page fetch failure.
func NewFetchError(message string, cause error) *AppError {
	return newAppError(ErrorTypeFetchFailed, http.StatusBadGateway, message, cause)
}

func NewUnknownInstructionError(message string, cause error) *AppError {
	return newAppError(ErrorTypeUnknownInstruction, http.StatusBadRequest, message, cause)
}

func NewMissingInstructionError(message string, cause error) *AppError {
	return newAppError(ErrorTypeMissingInstruction, http.StatusBadRequest, message, cause)
}

// NewModelInvocationError creates a fatal chat completion error
func NewModelInvocationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeModelInvocation, http.StatusInternalServerError, message, cause)
}

// NewModelTimeoutError is the timeout variant of a model invocation failure.
func NewModelTimeoutError(message string, cause error) *AppError {
	return newAppError(ErrorTypeModelInvocation, http.StatusGatewayTimeout, message, cause)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeConfiguration, http.StatusInternalServerError, message, cause)
}

// NewConnectionError creates a new upstream connection error
func NewConnectionError(message string, cause error) *AppError {
	return newAppError(ErrorTypeConnection, http.StatusBadGateway, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newAppError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewInvalidInputError creates an error for input the upstream service would refuse.
func NewInvalidInputError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInvalidInput, http.StatusBadRequest, message, cause)
}

// NewUpstreamError creates a catch-all upstream service error
func NewUpstreamError(message string, cause error) *AppError {
	return newAppError(ErrorTypeUpstream, http.StatusBadGateway, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// As returns the outermost AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := As(err); ok {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
