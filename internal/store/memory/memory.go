// Package memory provides an in-process Store used by tests and MOCK_MODE
// runs, where the API serves traffic without any AWS dependency.
package memory

import (
	"context"
	"sync"

	"github.com/microcash/transactions-api/internal/apperrors"
	"github.com/microcash/transactions-api/internal/domain"
)

// Store keeps transactions in a mutex-guarded map, ordered by insertion so
// pagination is deterministic.
type Store struct {
	mu     sync.RWMutex
	byTxid map[string]domain.Transaction
	order  []string
	nextID int64
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		byTxid: make(map[string]domain.Transaction),
		nextID: 1,
	}
}

func (s *Store) GetAll(ctx context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(s.order))
	for _, txid := range s.order {
		out = append(out, s.byTxid[txid])
	}
	return out, nil
}

func (s *Store) GetPage(ctx context.Context, page, pageSize int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offset := (page - 1) * pageSize
	if offset >= len(s.order) {
		return []domain.Transaction{}, nil
	}

	end := offset + pageSize
	if end > len(s.order) {
		end = len(s.order)
	}

	out := make([]domain.Transaction, 0, end-offset)
	for _, txid := range s.order[offset:end] {
		out = append(out, s.byTxid[txid])
	}
	return out, nil
}

func (s *Store) GetByTxid(ctx context.Context, txid string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.byTxid[txid]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (s *Store) Insert(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byTxid[tx.Txid]; exists {
		return nil, apperrors.New(apperrors.KindConflict, "a transaction with this txid already exists")
	}

	tx.ID = s.nextID
	s.nextID++
	s.byTxid[tx.Txid] = tx
	s.order = append(s.order, tx.Txid)

	return &tx, nil
}

func (s *Store) Update(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byTxid[tx.Txid]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "transaction not found")
	}

	tx.ID = existing.ID
	s.byTxid[tx.Txid] = tx
	return &tx, nil
}

func (s *Store) DeleteByTxid(ctx context.Context, txid string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.byTxid[txid]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "transaction not found")
	}

	delete(s.byTxid, txid)
	for i, id := range s.order {
		if id == txid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return &tx, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byTxid), nil
}
