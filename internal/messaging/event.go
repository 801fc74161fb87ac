package messaging

import "time"

// Event types published to the transaction-events topic.
const (
	EventCreated   = "transaction.created"
	EventFetched   = "transaction.fetched"
	EventProcessed = "transaction.processed"
	EventDeleted   = "transaction.deleted"
)

// Event is the best-effort notification emitted after each use case. Losing
// one never affects the transaction outcome.
type Event struct {
	Type       string    `json:"type"`
	Txid       string    `json:"txid"`
	E2eID      string    `json:"e2eId,omitempty"`
	Amount     string    `json:"amount"`
	OccurredAt time.Time `json:"occurredAt"`
}
