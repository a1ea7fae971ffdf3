package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Is lets wrapped copies match their sentinel through errors.Is
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// Predefined domain errors
var (
	// Identity verification errors
	ErrInvalidToken        = NewDomainError("INVALID_TOKEN", "invalid or expired identity token")
	ErrProviderUnavailable = NewDomainError("PROVIDER_UNAVAILABLE", "identity provider unavailable")

	// Session errors
	ErrUnauthorized    = NewDomainError("UNAUTHORIZED", "unauthorized")
	ErrSessionNotFound = NewDomainError("SESSION_NOT_FOUND", "session expired or invalid")

	// User errors
	ErrUserNotFound = NewDomainError("USER_NOT_FOUND", "user not found")
	ErrEmailExists  = NewDomainError("EMAIL_EXISTS", "email already registered")

	// Validation errors
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "invalid input")

	// System errors
	ErrInternal           = NewDomainError("INTERNAL_ERROR", "internal server error")
	ErrServiceUnavailable = NewDomainError("SERVICE_UNAVAILABLE", "service unavailable")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

// domainErrorToHTTPStatus maps specific domain errors to HTTP status codes.
// Verifier failures map to 400 at the create endpoint, matching the
// original API contract, and email conflicts surface as plain validation
// failures rather than 409s.
func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "INVALID_INPUT", "INVALID_TOKEN", "PROVIDER_UNAVAILABLE", "EMAIL_EXISTS":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "UNAUTHORIZED", "SESSION_NOT_FOUND":
		return http.StatusUnauthorized

	// 404 Not Found
	case "USER_NOT_FOUND":
		return http.StatusNotFound

	// 503 Service Unavailable
	case "SERVICE_UNAVAILABLE":
		return http.StatusServiceUnavailable

	// 500 Internal Server Error (default)
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
