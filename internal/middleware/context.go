package middleware

import (
	"context"
	"time"

	ctxutil "github.com/VidyaQuest-Labs/portal/pkg/context"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextMiddleware stamps request tracking metadata into the request
// context so every layer logs with the same request id.
func ContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx = context.WithValue(ctx, ctxutil.RequestIDKey, requestID)
		ctx = context.WithValue(ctx, ctxutil.ClientIPKey, c.ClientIP())
		ctx = context.WithValue(ctx, ctxutil.UserAgentKey, c.Request.UserAgent())
		ctx = context.WithValue(ctx, ctxutil.StartTimeKey, time.Now())

		c.Header("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequestTimeoutMiddleware bounds every request with a deadline so a
// stalled external provider cannot hang the handler forever.
func RequestTimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
