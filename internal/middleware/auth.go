package middleware

import (
	"net/http"
	"strings"

	"github.com/VidyaQuest-Labs/portal/internal/constants"
	"github.com/VidyaQuest-Labs/portal/internal/repository"
	ctxutil "github.com/VidyaQuest-Labs/portal/pkg/context"
	"github.com/VidyaQuest-Labs/portal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the session middleware
const (
	CtxSessionToken = "session_token"
	CtxUserID       = "user_id"
	CtxSubject      = "subject"
)

type SessionMiddleware struct {
	sessions *repository.SessionRepository
	users    *repository.UserRepository
}

func NewSessionMiddleware(sessions *repository.SessionRepository, users *repository.UserRepository) *SessionMiddleware {
	return &SessionMiddleware{
		sessions: sessions,
		users:    users,
	}
}

// RequireSession validates the bearer token against the session store
// and loads the owning user into the request context. Missing, inactive
// and expired sessions all yield the same 401.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.GetLogger().Warn("Missing Authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("No token provided", nil))
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.GetLogger().Warn("Invalid Authorization header format",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("No token provided", nil))
			c.Abort()
			return
		}

		token := tokenParts[1]
		ctx := c.Request.Context()

		session, err := m.sessions.FindActive(ctx, token)
		if err != nil {
			logger.GetLogger().Warn("No active session for token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err))
			c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Invalid or expired token", nil))
			c.Abort()
			return
		}

		user, err := m.users.GetByID(ctx, session.UserID)
		if err != nil {
			logger.GetLogger().Warn("Session owner not found",
				zap.Uint("user_id", session.UserID),
				zap.Error(err))
			c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Invalid or expired token", nil))
			c.Abort()
			return
		}

		c.Set(CtxSessionToken, token)
		c.Set(CtxUserID, user.ID)
		c.Set(CtxSubject, user.Subject)

		ctx = ctxutil.WithSubject(ctx, user.Subject)
		ctx = ctxutil.WithValue(ctx, ctxutil.UserIDKey, user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
