package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/VidyaQuest-Labs/portal/config"
	apperrors "github.com/VidyaQuest-Labs/portal/internal/errors"
	ctxutil "github.com/VidyaQuest-Labs/portal/pkg/context"
	"github.com/VidyaQuest-Labs/portal/pkg/httpclient"
	"github.com/VidyaQuest-Labs/portal/pkg/logger"
)

const (
	assistantSystemPrompt = "You are a helpful assistant."
	explainSystemPrompt   = "You are a helpful assistant that explains book paragraphs in simple terms."
)

// ChatService proxies single free-text messages to an OpenAI-compatible
// chat completions endpoint. One request per message, finite timeout,
// no retry and no caching.
type ChatService struct {
	cfg config.ChatConfig
}

func NewChatService(cfg config.ChatConfig) *ChatService {
	return &ChatService{cfg: cfg}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Chat answers a free-text message with the static assistant prompt
func (s *ChatService) Chat(ctx context.Context, message string) (string, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Chat")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	return s.complete(ctx, assistantSystemPrompt, message, s.cfg.MaxTokens)
}

// Explain rewrites a book paragraph in simple terms
func (s *ChatService) Explain(ctx context.Context, paragraph string) (string, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Explain")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	// Explanations run longer than chat replies
	maxTokens := s.cfg.MaxTokens * 2

	return s.complete(ctx, explainSystemPrompt, "Explain this paragraph: "+paragraph, maxTokens)
}

func (s *ChatService) complete(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	if s.cfg.APIKey == "" {
		return "", apperrors.WrapError(apperrors.ErrServiceUnavailable, fmt.Errorf("chat API key is not configured"))
	}

	headers := map[string]string{
		"Authorization": "Bearer " + s.cfg.APIKey,
	}
	if s.cfg.ProjectID != "" {
		headers["x-project-id"] = s.cfg.ProjectID
	}

	body, status, err := httpclient.DoRequest(ctx, httpclient.RequestConfig{
		Method:  http.MethodPost,
		URL:     s.cfg.BaseURL + "/chat/completions",
		Headers: headers,
		Body: chatCompletionRequest{
			Model: s.cfg.Model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: userMessage},
			},
			MaxTokens:   maxTokens,
			Temperature: s.cfg.Temperature,
		},
		Timeout: s.cfg.Timeout,
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Chat provider request failed").
			Err(err).
			Log()
		return "", apperrors.WrapError(apperrors.ErrServiceUnavailable, err)
	}
	if status < 200 || status >= 300 {
		logger.WarnWithContext(ctx, "Chat provider returned error status").
			Int("status_code", status).
			Log()
		return "", apperrors.WrapError(apperrors.ErrServiceUnavailable, fmt.Errorf("chat provider returned status %d", status))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", apperrors.WrapError(apperrors.ErrServiceUnavailable, err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", apperrors.WrapError(apperrors.ErrServiceUnavailable, fmt.Errorf("chat provider returned no completion"))
	}

	return completion.Choices[0].Message.Content, nil
}
