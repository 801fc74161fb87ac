package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/microcash/transactions-api/internal/apikey"
	"github.com/microcash/transactions-api/internal/cache"
	"github.com/microcash/transactions-api/internal/config"
	"github.com/microcash/transactions-api/internal/domain"
	"github.com/microcash/transactions-api/internal/messaging"
	"github.com/microcash/transactions-api/internal/service"
	"github.com/microcash/transactions-api/internal/store"
	"github.com/microcash/transactions-api/internal/store/dynamo"
	"github.com/microcash/transactions-api/internal/store/memory"
	"github.com/microcash/transactions-api/internal/txid"
	"github.com/microcash/transactions-api/internal/usecase"
)

// Server represents the HTTP server with all its dependencies
type Server struct {
	cfg         *config.Config
	logger      *slog.Logger
	httpServer  *http.Server
	redisClient *redis.Client
	publisher   messaging.Publisher
}

// New creates a new server instance
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize stores (mock or DynamoDB)
	var txStore store.Store
	var keyStore apikey.Store
	if cfg.MockMode {
		logger.Info("using in-memory stores")
		txStore = memory.New()
		keyStore = apikey.NewMemoryStore(domain.APIKey{
			ID:       1,
			Key:      "dev-api-key",
			Name:     "Development",
			Document: "00000000000",
			Account:  "0000001",
		})
	} else {
		logger.Info("connecting to DynamoDB", "region", cfg.AWSRegion, "endpoint", cfg.DynamoEndpoint)
		client, err := dynamo.NewClient(ctx, dynamo.Config{
			Region:   cfg.AWSRegion,
			Endpoint: cfg.DynamoEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		st, err := dynamo.New(ctx, client, cfg.TransactionTable)
		if err != nil {
			return nil, fmt.Errorf("failed to open transaction table: %w", err)
		}
		txStore = st
		keyStore = apikey.NewDynamoStore(client, cfg.APIKeyTable)
	}

	// Initialize Redis client
	logger.Info("connecting to Redis", "addr", cfg.RedisAddr)
	s.redisClient = redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		// Cache reads and rate limiting both fail open, so a dead Redis
		// degrades the service instead of stopping it.
		logger.Warn("redis connection failed, caching degraded", "error", err)
	}

	// Initialize event publisher
	logger.Info("connecting to Kafka", "broker", cfg.KafkaBroker, "topic", cfg.KafkaTopic)
	s.publisher = messaging.NewKafkaPublisher([]string{cfg.KafkaBroker}, cfg.KafkaTopic, logger)

	transactionCache := cache.NewRedisCache(s.redisClient, cfg.CacheAbsoluteTTL, cfg.CacheSlidingTTL)
	transactionService := service.New(txStore, txid.NewGenerator(), logger)
	transactions := usecase.NewTransactions(transactionService, transactionCache, s.publisher, logger)
	keyService := apikey.NewService(keyStore, logger)

	router := SetupRouter(cfg, logger, transactions, keyService, txStore, s.redisClient)

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Run starts the server and handles graceful shutdown
func (s *Server) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("starting transactions API",
			"port", s.cfg.APIPort,
			"mock_mode", s.cfg.MockMode,
			"dev_mode", s.cfg.DevMode,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or server error
	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Error("publisher close error", "error", err)
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("redis close error", "error", err)
		}
	}

	s.logger.Info("server gracefully stopped")
	return nil
}
