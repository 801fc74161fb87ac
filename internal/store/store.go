// Package store defines the durable persistence boundary for transactions.
// The store is always authoritative; the read cache in front of it is not.
package store

import (
	"context"

	"github.com/microcash/transactions-api/internal/domain"
)

// Store is the durable CRUD surface consumed by the lifecycle service.
// Implementations return apperrors kinds: Insert rejects a duplicate txid
// with Conflict, Update and DeleteByTxid report a missing record as
// NotFound, and an unreachable backend surfaces as Unavailable.
type Store interface {
	GetAll(ctx context.Context) ([]domain.Transaction, error)
	GetPage(ctx context.Context, page, pageSize int) ([]domain.Transaction, error)

	// GetByTxid returns (nil, nil) when no record matches.
	GetByTxid(ctx context.Context, txid string) (*domain.Transaction, error)

	Insert(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error)
	Update(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error)

	// DeleteByTxid removes the record and returns the pre-deletion snapshot.
	DeleteByTxid(ctx context.Context, txid string) (*domain.Transaction, error)

	Count(ctx context.Context) (int, error)
}
