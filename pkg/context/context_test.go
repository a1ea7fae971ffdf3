package ctxutil

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestNewContextWithRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/users/profile", nil)
	req.Header.Set("User-Agent", "portal-test")
	req.RemoteAddr = "10.0.0.1:1234"

	ctx := NewContextWithRequest(context.Background(), req, "handler", "GetProfile")

	if got := GetModule(ctx); got != "handler" {
		t.Errorf("Expected module handler, got %q", got)
	}
	if got := GetFunction(ctx); got != "GetProfile" {
		t.Errorf("Expected function GetProfile, got %q", got)
	}
	if got := GetUserAgent(ctx); got != "portal-test" {
		t.Errorf("Expected user agent from request, got %q", got)
	}
	if got := GetClientIP(ctx); got != "10.0.0.1:1234" {
		t.Errorf("Expected client address from request, got %q", got)
	}
	if GetStartTime(ctx).IsZero() {
		t.Error("Expected start time to be stamped")
	}
}

func TestNewContextWithRequestKeepsExistingMetadata(t *testing.T) {
	req := httptest.NewRequest("GET", "/users/profile", nil)
	req.Header.Set("User-Agent", "late-agent")

	ctx := context.WithValue(context.Background(), UserAgentKey, "early-agent")
	ctx = context.WithValue(ctx, ClientIPKey, "203.0.113.9")

	ctx = NewContextWithRequest(ctx, req, "handler", "GetProfile")

	if got := GetUserAgent(ctx); got != "early-agent" {
		t.Errorf("Expected middleware-stamped user agent to win, got %q", got)
	}
	if got := GetClientIP(ctx); got != "203.0.113.9" {
		t.Errorf("Expected middleware-stamped client ip to win, got %q", got)
	}
}

func TestNewContextWithRequestNilSafe(t *testing.T) {
	ctx := NewContextWithRequest(nil, nil, "service", "AddXP")

	if got := GetModule(ctx); got != "service" {
		t.Errorf("Expected module service, got %q", got)
	}
	if got := GetUserAgent(ctx); got != "" {
		t.Errorf("Expected empty user agent without a request, got %q", got)
	}
}
