package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorizes failures along the reply pipeline and its edges.
type ErrorType string

const (
	// ErrTypeContextResolution means no usable send credential or business
	// account could be resolved. Fatal per send attempt.
	ErrTypeContextResolution ErrorType = "CONTEXT_RESOLUTION"
	// ErrTypeDelivery means the messaging provider rejected the send.
	// Fatal per turn, never retried automatically.
	ErrTypeDelivery ErrorType = "DELIVERY"
	// ErrTypeEmbedding means the embedding call failed or the provider key
	// is absent. Callers degrade to an empty retrieval context.
	ErrTypeEmbedding ErrorType = "EMBEDDING"
	// ErrTypeGeneration means the language model call failed. Fatal per
	// turn; no partial reply is sent.
	ErrTypeGeneration ErrorType = "GENERATION"
	// ErrTypeStore means the dedup claim hit an unknown database failure.
	// Callers fail closed and skip the event.
	ErrTypeStore ErrorType = "STORE"

	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeDatabase   ErrorType = "DATABASE_ERROR"
	ErrTypeExternal   ErrorType = "EXTERNAL"
	ErrTypeInternal   ErrorType = "INTERNAL"
)

// AppError is the typed error carried across layers.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError without a cause.
func New(errorType ErrorType, message string) *AppError {
	return &AppError{Type: errorType, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(errorType ErrorType, format string, args ...any) *AppError {
	return &AppError{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an AppError around a cause.
func Wrap(errorType ErrorType, message string, err error) *AppError {
	return &AppError{Type: errorType, Message: message, Err: err}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// TypeOf returns the error type, or ErrTypeInternal for untyped errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrTypeInternal
}

// TypeToHTTPStatus maps error types to HTTP status codes.
func TypeToHTTPStatus(errorType ErrorType) int {
	switch errorType {
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeContextResolution, ErrTypeDelivery, ErrTypeEmbedding, ErrTypeGeneration, ErrTypeExternal:
		return http.StatusBadGateway
	case ErrTypeStore, ErrTypeDatabase:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
