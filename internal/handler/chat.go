package handler

import (
	"net/http"

	"github.com/VidyaQuest-Labs/portal/internal/constants"
	"github.com/VidyaQuest-Labs/portal/internal/dto"
	apperrors "github.com/VidyaQuest-Labs/portal/internal/errors"
	"github.com/VidyaQuest-Labs/portal/internal/service"
	ctxutil "github.com/VidyaQuest-Labs/portal/pkg/context"
	"github.com/VidyaQuest-Labs/portal/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat forwards a single user message to the language model and returns
// the assistant reply.
func (h *ChatHandler) Chat(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Chat")

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid request body for chat").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("message is required", err.Error()))
		return
	}

	logger.InfoWithContext(ctx, "Chat request").
		Int("message_length", len(req.Message)).
		Log()

	reply, err := h.chatService.Chat(ctx, req.Message)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Chat completion failed").
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse("Chat is temporarily unavailable", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, dto.ChatResponse{Reply: reply})
}

// Explain asks the language model for a simplified explanation of a
// textbook paragraph.
func (h *ChatHandler) Explain(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Explain")

	var req dto.ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid request body for explain").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("paragraph is required", err.Error()))
		return
	}

	explanation, err := h.chatService.Explain(ctx, req.Paragraph)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Explain completion failed").
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse("Explanation is temporarily unavailable", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, dto.ExplainResponse{Success: true, Explanation: explanation})
}
