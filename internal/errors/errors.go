// FilePath: internal/errors/errors.go
package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Error types
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeDuplicate   ErrorType = "duplicate"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeForbidden   ErrorType = "forbidden"
	ErrorTypePersistence ErrorType = "persistence"
	ErrorTypeInternal    ErrorType = "internal"
	ErrorTypeUnavailable ErrorType = "service_unavailable"
)

// APIError represents a structured API error
type APIError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Details   any       `json:"details,omitempty"`
	err       error     // Internal error for logging
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the internal error for errors.Is/As chains
func (e *APIError) Unwrap() error {
	return e.err
}

// WithRequestID adds a request ID to the error
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// WithDetails adds additional details to the error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// NewValidationError creates a new validation error
func NewValidationError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeValidation,
		Message: msg,
		Code:    http.StatusBadRequest,
		err:     err,
	}
}

// NewDuplicateError creates an error for an already-existing resource
func NewDuplicateError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeDuplicate,
		Message: msg,
		Code:    http.StatusConflict,
		err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: msg,
		Code:    http.StatusNotFound,
		err:     err,
	}
}

// NewForbiddenError creates an error for mutations of protected resources
func NewForbiddenError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeForbidden,
		Message: msg,
		Code:    http.StatusForbidden,
		err:     err,
	}
}

// NewPersistenceError creates an error for durable-store failures
func NewPersistenceError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypePersistence,
		Message: msg,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeInternal,
		Message: msg,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

// IsDuplicate checks if an error is a Duplicate error
func IsDuplicate(err error) bool {
	return hasType(err, ErrorTypeDuplicate)
}

// IsForbidden checks if an error is a Forbidden error
func IsForbidden(err error) bool {
	return hasType(err, ErrorTypeForbidden)
}

// IsValidation checks if an error is a Validation error
func IsValidation(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsPersistence checks if an error is a Persistence error
func IsPersistence(err error) bool {
	return hasType(err, ErrorTypePersistence)
}

func hasType(err error, t ErrorType) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == t
	}
	return false
}
