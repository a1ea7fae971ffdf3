package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/VidyaQuest-Labs/portal/internal/errors"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test_identity_secret"

func mintLocalToken(t *testing.T, subject, phone string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          subject,
		"phone_number": phone,
		"exp":          expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func TestLocalVerifier(t *testing.T) {
	verifier := NewLocalIdentityVerifier(testSecret)
	ctx := context.Background()

	t.Run("Valid token", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour)
		token := mintLocalToken(t, "sub-1", "+15551230001", expiry)

		identity, err := verifier.Verify(ctx, token)
		if err != nil {
			t.Fatalf("Verify returned %v", err)
		}
		if identity.Subject != "sub-1" {
			t.Errorf("Expected subject sub-1, got %s", identity.Subject)
		}
		if identity.Phone != "+15551230001" {
			t.Errorf("Expected phone +15551230001, got %s", identity.Phone)
		}
		if identity.ExpiresAt.Unix() != expiry.Unix() {
			t.Errorf("Expected expiry %v, got %v", expiry.Unix(), identity.ExpiresAt.Unix())
		}
	})

	t.Run("Expired token", func(t *testing.T) {
		token := mintLocalToken(t, "sub-1", "+15551230001", time.Now().Add(-time.Hour))

		_, err := verifier.Verify(ctx, token)
		if !errors.Is(err, apperrors.ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("Malformed token", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "not-a-jwt")
		if !errors.Is(err, apperrors.ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":          "sub-1",
			"phone_number": "+15551230001",
			"exp":          time.Now().Add(time.Hour).Unix(),
		})
		signed, err := other.SignedString([]byte("some_other_secret"))
		if err != nil {
			t.Fatalf("Failed to sign token: %v", err)
		}

		if _, err := verifier.Verify(ctx, signed); !errors.Is(err, apperrors.ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("Missing phone claim", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "sub-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("Failed to sign token: %v", err)
		}

		if _, err := verifier.Verify(ctx, signed); !errors.Is(err, apperrors.ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestHTTPVerifier(t *testing.T) {
	ctx := context.Background()

	t.Run("Provider accepts token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/accounts:lookup" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("key") != "api-key" {
				t.Errorf("Expected api key in query, got %s", r.URL.RawQuery)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"users":[{"localId":"sub-1","phoneNumber":"+15551230001"}]}`))
		}))
		defer server.Close()

		verifier := NewHTTPIdentityVerifier(server.URL, "api-key", 5*time.Second, time.Hour)

		identity, err := verifier.Verify(ctx, "opaque-token")
		if err != nil {
			t.Fatalf("Verify returned %v", err)
		}
		if identity.Subject != "sub-1" {
			t.Errorf("Expected subject sub-1, got %s", identity.Subject)
		}
		if identity.Phone != "+15551230001" {
			t.Errorf("Expected phone +15551230001, got %s", identity.Phone)
		}
		// Opaque token has no readable expiry, fall back to session TTL
		if remaining := time.Until(identity.ExpiresAt); remaining < 55*time.Minute || remaining > 65*time.Minute {
			t.Errorf("Expected roughly 1h expiry fallback, got %s", remaining)
		}
	})

	t.Run("Provider rejects token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"INVALID_ID_TOKEN"}}`))
		}))
		defer server.Close()

		verifier := NewHTTPIdentityVerifier(server.URL, "api-key", 5*time.Second, time.Hour)

		if _, err := verifier.Verify(ctx, "bad-token"); !errors.Is(err, apperrors.ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("Provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		verifier := NewHTTPIdentityVerifier(server.URL, "api-key", 5*time.Second, time.Hour)

		if _, err := verifier.Verify(ctx, "token"); !errors.Is(err, apperrors.ErrProviderUnavailable) {
			t.Errorf("Expected ErrProviderUnavailable, got %v", err)
		}
	})

	t.Run("Provider unreachable", func(t *testing.T) {
		verifier := NewHTTPIdentityVerifier("http://127.0.0.1:1", "api-key", time.Second, time.Hour)

		if _, err := verifier.Verify(ctx, "token"); !errors.Is(err, apperrors.ErrProviderUnavailable) {
			t.Errorf("Expected ErrProviderUnavailable, got %v", err)
		}
	})

	t.Run("Empty user list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"users":[]}`))
		}))
		defer server.Close()

		verifier := NewHTTPIdentityVerifier(server.URL, "api-key", 5*time.Second, time.Hour)

		if _, err := verifier.Verify(ctx, "token"); !errors.Is(err, apperrors.ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("JWT expiry claim wins over fallback", func(t *testing.T) {
		exp := time.Now().Add(30 * time.Minute)
		token := mintLocalToken(t, "sub-1", "+15551230001", exp)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"users":[{"localId":"sub-1","phoneNumber":"+15551230001"}]}`))
		}))
		defer server.Close()

		verifier := NewHTTPIdentityVerifier(server.URL, "api-key", 5*time.Second, time.Hour)

		identity, err := verifier.Verify(ctx, token)
		if err != nil {
			t.Fatalf("Verify returned %v", err)
		}
		if identity.ExpiresAt.Unix() != exp.Unix() {
			t.Errorf("Expected expiry from token claim %v, got %v", exp.Unix(), identity.ExpiresAt.Unix())
		}
	})

	t.Run("Revoke", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		verifier := NewHTTPIdentityVerifier(server.URL, "api-key", 5*time.Second, time.Hour)

		if err := verifier.Revoke(ctx, "sub-1"); err != nil {
			t.Fatalf("Revoke returned %v", err)
		}
		if gotPath != "/accounts:delete" {
			t.Errorf("Expected /accounts:delete, got %s", gotPath)
		}
	})
}
