package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "Invalid token", err: ErrInvalidToken, want: http.StatusBadRequest},
		{name: "Provider unavailable", err: ErrProviderUnavailable, want: http.StatusBadRequest},
		{name: "Invalid input", err: ErrInvalidInput, want: http.StatusBadRequest},
		{name: "Email exists", err: ErrEmailExists, want: http.StatusBadRequest},
		{name: "Unauthorized", err: ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "Session not found", err: ErrSessionNotFound, want: http.StatusUnauthorized},
		{name: "User not found", err: ErrUserNotFound, want: http.StatusNotFound},
		{name: "Service unavailable", err: ErrServiceUnavailable, want: http.StatusServiceUnavailable},
		{name: "Internal", err: ErrInternal, want: http.StatusInternalServerError},
		{name: "Plain error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestWrappedErrorMatchesSentinel(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	wrapped := WrapError(ErrProviderUnavailable, cause)

	if !errors.Is(wrapped, ErrProviderUnavailable) {
		t.Error("Expected wrapped error to match its sentinel")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("Expected wrapped error to unwrap to its cause")
	}
	if got := ToHTTPStatus(wrapped); got != http.StatusBadRequest {
		t.Errorf("Expected 400 for wrapped provider error, got %d", got)
	}
}

func TestGetErrorMessage(t *testing.T) {
	wrapped := WrapError(ErrInvalidToken, errors.New("signature check failed"))
	if msg := GetErrorMessage(wrapped); msg == "" {
		t.Error("Expected a non-empty message")
	}
}
