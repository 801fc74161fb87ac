package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// Handler processes one decoded transaction event. raw carries the original
// payload for diagnostics.
type Handler func(ctx context.Context, event Event, raw []byte)

// Consumer reads transaction events from Kafka as part of a consumer group.
type Consumer struct {
	reader *kafka.Reader
	logger *slog.Logger
}

// NewConsumer builds a group consumer for the given brokers and topic.
func NewConsumer(brokers []string, topic, groupID string, logger *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return &Consumer{reader: reader, logger: logger}
}

// Run consumes until ctx is cancelled. A message that fails to decode is
// logged and skipped; the loop never dies because of one bad payload.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	c.logger.Info("consumer started, waiting for messages")

	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("error reading message", "error", err)
			continue
		}

		var event Event
		if err := json.Unmarshal(m.Value, &event); err != nil {
			c.logger.Error("failed to unmarshal event", "error", err, "raw", string(m.Value))
			continue
		}

		handle(ctx, event, m.Value)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
