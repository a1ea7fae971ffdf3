package router

import (
	"time"

	"github.com/VidyaQuest-Labs/portal/config"
	"github.com/VidyaQuest-Labs/portal/internal/handler"
	"github.com/VidyaQuest-Labs/portal/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	userHandler   *handler.UserHandler
	todoHandler   *handler.TodoHandler
	chatHandler   *handler.ChatHandler
	bookHandler   *handler.BookHandler
	healthHandler *handler.HealthHandler

	sessionMw *middleware.SessionMiddleware
	Config    *config.Config
}

func NewRouter(
	user *handler.UserHandler,
	todo *handler.TodoHandler,
	chat *handler.ChatHandler,
	book *handler.BookHandler,
	health *handler.HealthHandler,

	sessionMw *middleware.SessionMiddleware,
	config *config.Config,
) *Router {
	return &Router{
		userHandler:   user,
		todoHandler:   todo,
		chatHandler:   chat,
		bookHandler:   book,
		healthHandler: health,

		sessionMw: sessionMw,
		Config:    config,
	}
}

// SetupRoutes builds the gin engine. Routes live at the root so the
// existing web client keeps working without path rewrites.
func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.ContextMiddleware())
	router.Use(middleware.RequestTimeoutMiddleware(r.Config.App.Timeout))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORS())
	router.Use(middleware.RateLimit(r.Config.RateLimit.Request, time.Duration(r.Config.RateLimit.Duration)*time.Second))

	router.GET("/health", r.healthHandler.HealthCheck)
	router.GET("/health/live", r.healthHandler.BasicHealth)

	r.userRoutes(router)
	r.todoRoutes(router)
	r.contentRoutes(router)

	return router
}
