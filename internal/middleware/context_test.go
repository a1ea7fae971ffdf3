package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ctxutil "github.com/VidyaQuest-Labs/portal/pkg/context"
	"github.com/gin-gonic/gin"
)

func TestContextMiddlewareStampsMetadata(t *testing.T) {
	engine := gin.New()
	engine.Use(ContextMiddleware())

	var requestID string
	engine.GET("/ping", func(c *gin.Context) {
		requestID = ctxutil.GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("Generates request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		if requestID == "" {
			t.Error("Expected a generated request id in context")
		}
		if got := w.Header().Get("X-Request-ID"); got != requestID {
			t.Errorf("Expected echoed request id %q, got %q", requestID, got)
		}
	})

	t.Run("Preserves caller request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "caller-id")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		if requestID != "caller-id" {
			t.Errorf("Expected caller-id, got %q", requestID)
		}
	})
}

func TestRequestTimeoutMiddlewareSetsDeadline(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestTimeoutMiddleware(30 * time.Second))

	var deadline time.Time
	var hasDeadline bool
	engine.GET("/ping", func(c *gin.Context) {
		deadline, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if !hasDeadline {
		t.Fatal("Expected request context to carry a deadline")
	}
	if remaining := time.Until(deadline); remaining <= 0 || remaining > 30*time.Second {
		t.Errorf("Expected deadline within 30s, got %s", remaining)
	}
}
