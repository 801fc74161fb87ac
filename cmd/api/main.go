package main

import (
	"os"

	"github.com/microcash/transactions-api/internal/config"
	"github.com/microcash/transactions-api/internal/logging"
	"github.com/microcash/transactions-api/internal/server"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
