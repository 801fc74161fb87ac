// Package usecase coordinates each inbound command or query: reads prefer
// the cache and fall back to the lifecycle service, writes go to the service
// first and then refresh or evict the cache, and every outcome emits a
// best-effort notification. Cache and notifier failures are logged and never
// change what the caller gets back.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/microcash/transactions-api/internal/apperrors"
	"github.com/microcash/transactions-api/internal/cache"
	"github.com/microcash/transactions-api/internal/domain"
	"github.com/microcash/transactions-api/internal/messaging"
	"github.com/microcash/transactions-api/internal/service"
)

const listCacheKey = "transactions"

func pagedCacheKey(page, pageSize int) string {
	return fmt.Sprintf("transactions-paged-%d-%d", page, pageSize)
}

// Transactions exposes the application's use cases.
type Transactions struct {
	service   *service.TransactionService
	cache     cache.Cache
	publisher messaging.Publisher
	logger    *slog.Logger
}

// NewTransactions wires the use cases with their collaborators.
func NewTransactions(svc *service.TransactionService, c cache.Cache, pub messaging.Publisher, logger *slog.Logger) *Transactions {
	return &Transactions{
		service:   svc,
		cache:     c,
		publisher: pub,
		logger:    logger,
	}
}

// GetByTxid serves a single transaction, cache first.
func (u *Transactions) GetByTxid(ctx context.Context, txid string) (*Resource, error) {
	if payload, ok := u.cacheGet(ctx, txid); ok {
		if res, ok := decodeResource(payload); ok {
			u.logger.Info("transaction served from cache", "txid", txid)
			return res, nil
		}
		u.logger.Warn("discarding undecodable cache entry", "key", txid)
	}

	tx, err := u.service.Get(ctx, txid)
	if err != nil {
		return nil, err
	}

	res := &Resource{Transaction: tx}
	u.cacheSet(ctx, txid, res)
	u.publish(messaging.EventFetched, tx)
	return res, nil
}

// List serves every transaction, cache first. List entries are only ever
// refreshed here; writes leave them to expire naturally.
func (u *Transactions) List(ctx context.Context) ([]Resource, error) {
	if payload, ok := u.cacheGet(ctx, listCacheKey); ok {
		if list, ok := decodeResourceList(payload); ok {
			return list, nil
		}
		u.logger.Warn("discarding undecodable cache entry", "key", listCacheKey)
	}

	txs, err := u.service.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return []Resource{}, nil
	}

	list := toResources(txs)
	u.cacheSet(ctx, listCacheKey, list)
	return list, nil
}

// ListPaged serves one page of transactions, cache first. Pagination
// arguments are validated before any cache or store access.
func (u *Transactions) ListPaged(ctx context.Context, page, pageSize int) ([]Resource, error) {
	if page <= 0 || pageSize <= 0 {
		return nil, apperrors.New(apperrors.KindInvalidInput, "page and pageSize must be greater than zero")
	}

	key := pagedCacheKey(page, pageSize)
	if payload, ok := u.cacheGet(ctx, key); ok {
		if list, ok := decodeResourceList(payload); ok {
			return list, nil
		}
		u.logger.Warn("discarding undecodable cache entry", "key", key)
	}

	txs, err := u.service.ListPaged(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return []Resource{}, nil
	}

	list := toResources(txs)
	u.cacheSet(ctx, key, list)
	return list, nil
}

// Create records a new transaction and warms its cache entry.
func (u *Transactions) Create(ctx context.Context, amount decimal.Decimal) (*Resource, error) {
	tx, err := u.service.Create(ctx, amount)
	if err != nil {
		return nil, err
	}

	res := &Resource{Transaction: tx}
	u.cacheSet(ctx, tx.Txid, res)
	u.publish(messaging.EventCreated, tx)
	return res, nil
}

// Update processes a transaction and refreshes its cache entry. List and
// paged entries are not touched; they expire on their own.
func (u *Transactions) Update(ctx context.Context, txid string, payload *service.UpdatePayload) (*Resource, error) {
	tx, err := u.service.Update(ctx, txid, payload)
	if err != nil {
		return nil, err
	}

	res := &Resource{Transaction: tx}
	u.cacheSet(ctx, txid, res)
	u.publish(messaging.EventProcessed, tx)
	return res, nil
}

// Delete removes a transaction, evicts its cache entry and returns the
// pre-deletion snapshot.
func (u *Transactions) Delete(ctx context.Context, txid string) (*domain.Transaction, error) {
	snapshot, err := u.service.Delete(ctx, txid)
	if err != nil {
		return nil, err
	}

	if err := u.cache.Remove(ctx, txid); err != nil {
		u.logger.Warn("failed to evict transaction from cache", "txid", txid, "error", err)
	}

	u.publish(messaging.EventDeleted, snapshot)
	return snapshot, nil
}

func (u *Transactions) cacheGet(ctx context.Context, key string) (string, bool) {
	payload, ok, err := u.cache.Get(ctx, key)
	if err != nil {
		u.logger.Warn("cache lookup failed", "key", key, "error", err)
		return "", false
	}
	return payload, ok
}

func (u *Transactions) cacheSet(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		u.logger.Warn("failed to serialize cache payload", "key", key, "error", err)
		return
	}
	if err := u.cache.Set(ctx, key, string(payload)); err != nil {
		u.logger.Warn("failed to store payload in cache", "key", key, "error", err)
	}
}

// publish emits a notification on a detached goroutine so a slow broker
// never holds up the response. Failures are logged and dropped. The event is
// snapshotted before dispatch; the goroutine never touches the transaction.
func (u *Transactions) publish(eventType string, tx *domain.Transaction) {
	event := messaging.Event{
		Type:       eventType,
		Txid:       tx.Txid,
		E2eID:      tx.E2eID,
		Amount:     tx.Amount.String(),
		OccurredAt: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := u.publisher.Publish(ctx, event); err != nil {
			u.logger.Error("failed to publish transaction event", "type", event.Type, "txid", event.Txid, "error", err)
		}
	}()
}

func toResources(txs []domain.Transaction) []Resource {
	list := make([]Resource, 0, len(txs))
	for i := range txs {
		list = append(list, Resource{Transaction: &txs[i]})
	}
	return list
}
