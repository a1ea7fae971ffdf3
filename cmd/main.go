package main

import (
	"os"
	"os/signal"
	"syscall"

	configs "github.com/VidyaQuest-Labs/portal/config"
	"github.com/VidyaQuest-Labs/portal/internal/handler"
	"github.com/VidyaQuest-Labs/portal/internal/middleware"
	"github.com/VidyaQuest-Labs/portal/internal/repository"
	"github.com/VidyaQuest-Labs/portal/internal/router"
	"github.com/VidyaQuest-Labs/portal/internal/service"
	"github.com/VidyaQuest-Labs/portal/pkg/cache"
	"github.com/VidyaQuest-Labs/portal/pkg/database"
	"github.com/VidyaQuest-Labs/portal/pkg/logger"
	"github.com/VidyaQuest-Labs/portal/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize Zap logger
	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", "1.0.0"),
	)

	db, err := database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: int(config.Database.ConnMaxLifetime.Minutes()),
		ConnMaxIdleTime: int(config.Database.ConnMaxIdleTime.Minutes()),
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	todoRepo := repository.NewTodoRepository()

	redisClient := redis.NewClient(redis.Config{
		Host:         config.Redis.Host,
		Port:         config.Redis.Port,
		Password:     config.Redis.Password,
		DB:           config.Redis.Database,
		Enabled:      config.Redis.Enabled,
		PoolSize:     config.Redis.PoolSize,
		MinIdleConns: config.Redis.MinIdleConns,
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
	}, logger.GetLogger())
	defer redisClient.Close()

	logger.GetLogger().Info("Redis client initialized",
		zap.Bool("enabled", redisClient.IsEnabled()),
	)

	memCache := cache.NewCache()

	// Identity verifier, provider-backed in production and HS256 in dev
	var verifier service.IdentityVerifier
	switch config.Identity.Mode {
	case "local":
		verifier = service.NewLocalIdentityVerifier(config.Identity.Secret)
		logger.GetLogger().Warn("Using local identity verifier, not for production")
	default:
		verifier = service.NewHTTPIdentityVerifier(
			config.Identity.BaseURL,
			config.Identity.APIKey,
			config.Identity.Timeout,
			config.Identity.SessionTTL,
		)
	}

	// Services
	userService := service.NewUserService(userRepo, sessionRepo, verifier, redisClient, memCache)
	chatService := service.NewChatService(config.Chat)

	bookService, err := service.NewBookService(config.App.BooksPath)
	if err != nil {
		logger.GetLogger().Fatal("Failed to load book catalog",
			zap.Error(err),
			zap.String("path", config.App.BooksPath),
		)
	}

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	todoHandler := handler.NewTodoHandler(todoRepo)
	chatHandler := handler.NewChatHandler(chatService)
	bookHandler := handler.NewBookHandler(bookService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	sessionMiddleware := middleware.NewSessionMiddleware(sessionRepo, userRepo)

	if !config.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.NewRouter(
		userHandler,
		todoHandler,
		chatHandler,
		bookHandler,
		healthHandler,

		sessionMiddleware,
		config,
	).SetupRoutes()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := r.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}
