package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/microcash/transactions-api/internal/audit"
	"github.com/microcash/transactions-api/internal/config"
	"github.com/microcash/transactions-api/internal/logging"
	"github.com/microcash/transactions-api/internal/messaging"
)

const groupID = "transactions-audit"

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	logger.Info("starting auditor",
		"broker", cfg.KafkaBroker,
		"topic", cfg.KafkaTopic,
		"group", groupID,
		"elasticsearch", cfg.ElasticURL,
	)

	dlq := audit.NewDLQProducer([]string{cfg.KafkaBroker}, cfg.KafkaDLQTopic, logger)

	indexer, err := audit.NewIndexer(audit.Config{
		URL:         cfg.ElasticURL,
		Index:       cfg.ElasticIndex,
		SourceTopic: cfg.KafkaTopic,
		DLQ:         dlq,
	}, logger)
	if err != nil {
		logger.Error("failed to create indexer", "error", err)
		os.Exit(1)
	}

	consumer := messaging.NewConsumer([]string{cfg.KafkaBroker}, cfg.KafkaTopic, groupID, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		logger.Info("received shutdown signal, stopping consumer")
		cancel()
	}()

	if err := consumer.Run(ctx, func(ctx context.Context, event messaging.Event, raw []byte) {
		if err := indexer.IndexEvent(ctx, event, raw); err != nil {
			logger.Error("failed to index event", "txid", event.Txid, "error", err)
		}
	}); err != nil {
		logger.Error("consumer error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		logger.Error("failed to close consumer", "error", err)
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer closeCancel()
	if err := indexer.Close(closeCtx); err != nil {
		logger.Error("failed to close indexer", "error", err)
	}
	if err := dlq.Close(); err != nil {
		logger.Error("failed to close DLQ producer", "error", err)
	}

	logger.Info("auditor stopped gracefully")
}
