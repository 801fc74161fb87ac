package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// FailedDocument represents an event that failed Elasticsearch indexing.
type FailedDocument struct {
	OriginalDocument json.RawMessage `json:"originalDocument"`
	DocumentID       string          `json:"documentId"`
	ErrorType        string          `json:"errorType"`
	ErrorReason      string          `json:"errorReason"`
	FailedAt         time.Time       `json:"failedAt"`
	RetryCount       int             `json:"retryCount"`
	SourceTopic      string          `json:"sourceTopic"`
}

// DLQProducer wraps a Kafka writer for dead-letter operations.
type DLQProducer struct {
	writer *kafka.Writer
	topic  string
	logger *slog.Logger
}

// NewDLQProducer creates a producer for the dead-letter topic.
func NewDLQProducer(brokers []string, topic string, logger *slog.Logger) *DLQProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false, // Sync writes for reliability
	}

	return &DLQProducer{
		writer: writer,
		topic:  topic,
		logger: logger,
	}
}

// SendToDeadLetter sends a failed document to the DLQ.
func (p *DLQProducer) SendToDeadLetter(ctx context.Context, doc FailedDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	// Key by document ID so failures for one transaction stay on one partition
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(doc.DocumentID),
		Value: payload,
	})
	if err != nil {
		p.logger.Error("failed to send document to DLQ", "document_id", doc.DocumentID, "error", err)
		return err
	}

	p.logger.Info("sent failed document to DLQ", "document_id", doc.DocumentID, "topic", p.topic)
	return nil
}

// Close closes the Kafka writer.
func (p *DLQProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
