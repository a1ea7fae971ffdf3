package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/VidyaQuest-Labs/portal/internal/errors"
	"github.com/VidyaQuest-Labs/portal/pkg/httpclient"
	"github.com/VidyaQuest-Labs/portal/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified result the external phone-OTP provider hands
// back for a token: a stable subject identifier, the phone number the
// code was sent to, and the token's own expiry.
type Identity struct {
	Subject   string
	Phone     string
	ExpiresAt time.Time
}

// IdentityVerifier wraps the external identity provider. Verification is
// delegated entirely to the provider; no independent validation happens
// here. Verify fails with ErrInvalidToken (expired, malformed,
// signature-invalid) or ErrProviderUnavailable (network or provider
// error).
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
	Revoke(ctx context.Context, subject string) error
}

// ---------------------------------------------------------------------
// HTTP verifier (production): token lookup against the provider API.

type HTTPIdentityVerifier struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	// fallback session window when the token carries no readable expiry
	sessionTTL time.Duration
}

func NewHTTPIdentityVerifier(baseURL, apiKey string, timeout, sessionTTL time.Duration) *HTTPIdentityVerifier {
	return &HTTPIdentityVerifier{
		baseURL:    baseURL,
		apiKey:     apiKey,
		timeout:    timeout,
		sessionTTL: sessionTTL,
	}
}

type providerLookupResponse struct {
	Users []struct {
		LocalID     string `json:"localId"`
		PhoneNumber string `json:"phoneNumber"`
	} `json:"users"`
}

func (v *HTTPIdentityVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	body, status, err := httpclient.DoRequest(ctx, httpclient.RequestConfig{
		Method:  http.MethodPost,
		URL:     v.baseURL + "/accounts:lookup",
		Query:   map[string]string{"key": v.apiKey},
		Body:    map[string]interface{}{"idToken": token},
		Timeout: v.timeout,
	})
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrProviderUnavailable, err)
	}

	switch {
	case status >= 200 && status < 300:
		// fall through to decode
	case status >= 400 && status < 500:
		return nil, apperrors.WrapError(apperrors.ErrInvalidToken, fmt.Errorf("provider rejected token with status %d", status))
	default:
		return nil, apperrors.WrapError(apperrors.ErrProviderUnavailable, fmt.Errorf("provider returned status %d", status))
	}

	var lookup providerLookupResponse
	if err := json.Unmarshal(body, &lookup); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrProviderUnavailable, err)
	}
	if len(lookup.Users) == 0 {
		return nil, apperrors.ErrInvalidToken
	}
	if lookup.Users[0].PhoneNumber == "" {
		return nil, apperrors.WrapError(apperrors.ErrInvalidToken, fmt.Errorf("phone number not present in verified identity"))
	}

	return &Identity{
		Subject:   lookup.Users[0].LocalID,
		Phone:     lookup.Users[0].PhoneNumber,
		ExpiresAt: v.tokenExpiry(token),
	}, nil
}

// tokenExpiry reads the exp claim out of the provider token without
// verifying it; the provider already vouched for the token above. Falls
// back to the configured session window when the claim is unreadable.
func (v *HTTPIdentityVerifier) tokenExpiry(token string) time.Time {
	fallback := time.Now().Add(v.sessionTTL)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return fallback
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}
	return exp.Time
}

func (v *HTTPIdentityVerifier) Revoke(ctx context.Context, subject string) error {
	_, status, err := httpclient.DoRequest(ctx, httpclient.RequestConfig{
		Method:  http.MethodPost,
		URL:     v.baseURL + "/accounts:delete",
		Query:   map[string]string{"key": v.apiKey},
		Body:    map[string]interface{}{"localId": subject},
		Timeout: v.timeout,
	})
	if err != nil {
		return apperrors.WrapError(apperrors.ErrProviderUnavailable, err)
	}
	if status >= 400 {
		return apperrors.WrapError(apperrors.ErrProviderUnavailable, fmt.Errorf("provider revoke returned status %d", status))
	}

	logger.InfoWithContext(ctx, "External identity revoked").
		String("subject", subject).
		Log()

	return nil
}

// ---------------------------------------------------------------------
// Local verifier (development and tests): provider tokens are HS256 JWTs
// signed with a shared secret, claims sub / phone_number / exp.

type LocalIdentityVerifier struct {
	secret []byte
}

func NewLocalIdentityVerifier(secret string) *LocalIdentityVerifier {
	return &LocalIdentityVerifier{secret: []byte(secret)}
}

func (v *LocalIdentityVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperrors.WrapError(apperrors.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}

	subject, _ := claims["sub"].(string)
	phone, _ := claims["phone_number"].(string)
	if subject == "" || phone == "" {
		return nil, apperrors.ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, apperrors.ErrInvalidToken
	}

	return &Identity{
		Subject:   subject,
		Phone:     phone,
		ExpiresAt: exp.Time,
	}, nil
}

func (v *LocalIdentityVerifier) Revoke(ctx context.Context, subject string) error {
	// Nothing to revoke; local tokens expire on their own.
	return nil
}
