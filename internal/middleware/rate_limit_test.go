package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/VidyaQuest-Labs/portal/pkg/logger"
	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitTestLogger()
	m.Run()
}

func newRateLimitedRouter(maxRequest int, duration time.Duration) *gin.Engine {
	engine := gin.New()
	engine.Use(RateLimit(maxRequest, duration))
	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return engine
}

func hit(engine *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRateLimitAllowsWithinBudget(t *testing.T) {
	engine := newRateLimitedRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if w := hit(engine); w.Code != http.StatusOK {
			t.Fatalf("Request %d expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestRateLimitBlocksOverBudget(t *testing.T) {
	engine := newRateLimitedRouter(2, time.Minute)

	hit(engine)
	hit(engine)

	w := hit(engine)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", w.Code)
	}
}

func TestRateLimitHeaders(t *testing.T) {
	engine := newRateLimitedRouter(5, time.Minute)

	w := hit(engine)
	if got := w.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Errorf("Expected limit header 5, got %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "4" {
		t.Errorf("Expected remaining header 4, got %q", got)
	}
}

func TestRateLimitWindowSlides(t *testing.T) {
	engine := newRateLimitedRouter(1, 50*time.Millisecond)

	if w := hit(engine); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w := hit(engine); w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", w.Code)
	}

	time.Sleep(60 * time.Millisecond)

	if w := hit(engine); w.Code != http.StatusOK {
		t.Errorf("Expected 200 after window elapsed, got %d", w.Code)
	}
}
