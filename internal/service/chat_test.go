package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/VidyaQuest-Labs/portal/config"
	apperrors "github.com/VidyaQuest-Labs/portal/internal/errors"
)

func testChatConfig(baseURL string) config.ChatConfig {
	return config.ChatConfig{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		ProjectID:   "test-project",
		Model:       "openai/gpt-4o-mini",
		MaxTokens:   150,
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	}
}

func TestChat(t *testing.T) {
	var gotReq chatCompletionRequest
	var gotAuth, gotProject string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotProject = r.Header.Get("x-project-id")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hello there!"}}]}`))
	}))
	defer server.Close()

	svc := NewChatService(testChatConfig(server.URL))

	reply, err := svc.Chat(context.Background(), "Hi")
	if err != nil {
		t.Fatalf("Chat returned %v", err)
	}
	if reply != "Hello there!" {
		t.Errorf("Expected reply 'Hello there!', got %q", reply)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected bearer auth header, got %q", gotAuth)
	}
	if gotProject != "test-project" {
		t.Errorf("Expected project header, got %q", gotProject)
	}
	if gotReq.Model != "openai/gpt-4o-mini" {
		t.Errorf("Expected configured model, got %s", gotReq.Model)
	}
	if gotReq.MaxTokens != 150 {
		t.Errorf("Expected max_tokens 150, got %d", gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Content != "Hi" {
		t.Errorf("Unexpected message list %+v", gotReq.Messages)
	}
}

func TestExplainUsesLargerBudget(t *testing.T) {
	var gotReq chatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"In simple terms..."}}]}`))
	}))
	defer server.Close()

	svc := NewChatService(testChatConfig(server.URL))

	explanation, err := svc.Explain(context.Background(), "Photosynthesis is the process by which plants make food.")
	if err != nil {
		t.Fatalf("Explain returned %v", err)
	}
	if explanation == "" {
		t.Error("Expected non-empty explanation")
	}
	if gotReq.MaxTokens != 300 {
		t.Errorf("Expected doubled token budget, got %d", gotReq.MaxTokens)
	}
}

func TestChatFailureModes(t *testing.T) {
	t.Run("Missing API key", func(t *testing.T) {
		cfg := testChatConfig("http://127.0.0.1:1")
		cfg.APIKey = ""
		svc := NewChatService(cfg)

		if _, err := svc.Chat(context.Background(), "Hi"); !errors.Is(err, apperrors.ErrServiceUnavailable) {
			t.Errorf("Expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Provider error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		svc := NewChatService(testChatConfig(server.URL))

		if _, err := svc.Chat(context.Background(), "Hi"); !errors.Is(err, apperrors.ErrServiceUnavailable) {
			t.Errorf("Expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Empty completion", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		svc := NewChatService(testChatConfig(server.URL))

		if _, err := svc.Chat(context.Background(), "Hi"); !errors.Is(err, apperrors.ErrServiceUnavailable) {
			t.Errorf("Expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Provider unreachable", func(t *testing.T) {
		svc := NewChatService(testChatConfig("http://127.0.0.1:1"))

		if _, err := svc.Chat(context.Background(), "Hi"); !errors.Is(err, apperrors.ErrServiceUnavailable) {
			t.Errorf("Expected ErrServiceUnavailable, got %v", err)
		}
	})
}
