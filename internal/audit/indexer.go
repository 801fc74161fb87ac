package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/microcash/transactions-api/internal/messaging"
)

// Indexer wraps the Elasticsearch client with audit-specific functionality.
// Every lifecycle event consumed from Kafka becomes one document.
type Indexer struct {
	es          *elasticsearch.Client
	indexer     esutil.BulkIndexer
	index       string
	sourceTopic string
	dlq         *DLQProducer
	logger      *slog.Logger
}

// Config holds Elasticsearch connection configuration.
type Config struct {
	URL         string
	Index       string
	SourceTopic string
	DLQ         *DLQProducer
}

// EventDocument represents the document to be indexed.
type EventDocument struct {
	Type       string    `json:"type"`
	Txid       string    `json:"txid"`
	E2eID      string    `json:"e2eId,omitempty"`
	Amount     float64   `json:"amount"`
	AmountRaw  string    `json:"amountRaw"`
	OccurredAt time.Time `json:"occurredAt"`
	IndexedAt  time.Time `json:"indexedAt"`
}

// Index mapping for transaction events
const indexMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 0,
		"index": {
			"refresh_interval": "1s"
		}
	},
	"mappings": {
		"properties": {
			"type": { "type": "keyword" },
			"txid": { "type": "keyword" },
			"e2eId": { "type": "keyword" },
			"amount": { "type": "scaled_float", "scaling_factor": 100 },
			"amountRaw": { "type": "keyword" },
			"occurredAt": { "type": "date", "format": "strict_date_optional_time||epoch_millis" },
			"indexedAt": { "type": "date" }
		}
	}
}`

// NewIndexer creates a new Elasticsearch indexer for transaction events.
func NewIndexer(cfg Config, logger *slog.Logger) (*Indexer, error) {
	esCfg := elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    3,
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	// Verify connection
	res, err := es.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("Elasticsearch returned error: %s", res.Status())
	}

	logger.Info("connected to Elasticsearch", "status", res.Status())

	idx := &Indexer{
		es:          es,
		index:       cfg.Index,
		sourceTopic: cfg.SourceTopic,
		dlq:         cfg.DLQ,
		logger:      logger,
	}

	if err := idx.ensureIndex(); err != nil {
		return nil, fmt.Errorf("failed to ensure index: %w", err)
	}

	bulk, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        es,
		Index:         cfg.Index,
		NumWorkers:    2,
		FlushBytes:    5e+6,
		FlushInterval: 30 * time.Second,
		OnError: func(ctx context.Context, err error) {
			logger.Error("bulk indexer error", "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	idx.indexer = bulk

	return idx, nil
}

// ensureIndex creates the index with mapping if it doesn't exist.
func (c *Indexer) ensureIndex() error {
	res, err := c.es.Indices.Exists([]string{c.index})
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		c.logger.Info("index already exists", "index", c.index)
		return nil
	}

	res, err = c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to create index: %s", res.Status())
	}

	c.logger.Info("created index with mapping", "index", c.index)
	return nil
}

// IndexEvent adds a lifecycle event to the bulk indexer. Documents get
// auto-generated IDs so repeated events for one txid all survive.
func (c *Indexer) IndexEvent(ctx context.Context, event messaging.Event, rawJSON []byte) error {
	doc := EventDocument{
		Type:       event.Type,
		Txid:       event.Txid,
		E2eID:      event.E2eID,
		AmountRaw:  event.Amount,
		OccurredAt: event.OccurredAt,
		IndexedAt:  time.Now().UTC(),
	}
	if amount, err := strconv.ParseFloat(event.Amount, 64); err == nil {
		doc.Amount = amount
	}

	body, err := json.Marshal(doc)
	if err != nil {
		c.logger.Error("failed to marshal document", "raw", string(rawJSON))
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	err = c.indexer.Add(
		ctx,
		esutil.BulkIndexerItem{
			Action: "index",
			Body:   bytes.NewReader(body),
			OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
				c.logger.Info("indexed event", "txid", doc.Txid, "type", doc.Type)
			},
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				var errorType, errorReason string
				if err != nil {
					errorType = "client_error"
					errorReason = err.Error()
				} else {
					errorType = res.Error.Type
					errorReason = res.Error.Reason
				}
				c.logger.Error("failed to index event",
					"txid", doc.Txid,
					"error_type", errorType,
					"error_reason", errorReason,
					"raw", string(rawJSON),
				)

				if c.dlq != nil {
					failed := FailedDocument{
						OriginalDocument: rawJSON,
						DocumentID:       doc.Txid,
						ErrorType:        errorType,
						ErrorReason:      errorReason,
						FailedAt:         time.Now().UTC(),
						RetryCount:       0,
						SourceTopic:      c.sourceTopic,
					}
					// Independent context so the DLQ write survives shutdown
					timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if dlqErr := c.dlq.SendToDeadLetter(timeoutCtx, failed); dlqErr != nil {
						c.logger.Error("failed to send to DLQ", "error", dlqErr, "raw", string(rawJSON))
					}
				}
			},
		},
	)
	if err != nil {
		c.logger.Error("failed to add event to bulk indexer", "raw", string(rawJSON))
		return fmt.Errorf("failed to add to bulk indexer: %w", err)
	}

	return nil
}

// Close flushes and closes the bulk indexer.
func (c *Indexer) Close(ctx context.Context) error {
	if c.indexer != nil {
		if err := c.indexer.Close(ctx); err != nil {
			return fmt.Errorf("failed to close bulk indexer: %w", err)
		}
		stats := c.indexer.Stats()
		c.logger.Info("bulk indexer closed", "flushed", stats.NumFlushed, "failed", stats.NumFailed)
	}
	return nil
}
