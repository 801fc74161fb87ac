package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/microcash/transactions-api/internal/apikey"
	"github.com/microcash/transactions-api/internal/config"
	"github.com/microcash/transactions-api/internal/handler"
	"github.com/microcash/transactions-api/internal/middleware"
	"github.com/microcash/transactions-api/internal/store"
	"github.com/microcash/transactions-api/internal/usecase"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, logger *slog.Logger, transactions *usecase.Transactions, keys *apikey.Service, st store.Store, redisClient *redis.Client) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.DevMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))

	healthHandler := handler.NewHealthHandler(st, redisClient)
	transactionHandler := handler.NewTransactionHandler(transactions, logger)

	// Health check endpoints (no auth required)
	router.GET("/health", healthHandler.Liveness)
	router.GET("/health/ready", healthHandler.Readiness)

	// Transaction routes (API key required)
	api := router.Group("/api")
	{
		api.Use(middleware.Auth(keys))

		rateLimiter := middleware.NewRateLimiter(redisClient, logger, cfg.RateLimitRPS, cfg.RateLimitBurst)
		api.Use(rateLimiter.Middleware())

		transactionsGroup := api.Group("/transactions")
		{
			transactionsGroup.GET("", transactionHandler.List)
			transactionsGroup.GET("/paged", transactionHandler.ListPaged)
			transactionsGroup.GET("/:txid", transactionHandler.Get)
			transactionsGroup.POST("", transactionHandler.Create)
			transactionsGroup.PUT("/:txid", transactionHandler.Update)
			transactionsGroup.DELETE("/:txid", transactionHandler.Delete)
		}
	}

	return router
}
