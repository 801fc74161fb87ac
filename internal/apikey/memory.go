package apikey

import (
	"context"
	"sync"

	"github.com/microcash/transactions-api/internal/domain"
)

// MemoryStore is an in-process key store for tests and MOCK_MODE runs.
type MemoryStore struct {
	mu   sync.RWMutex
	keys map[string]domain.APIKey
}

// NewMemoryStore returns a store seeded with the given keys.
func NewMemoryStore(seed ...domain.APIKey) *MemoryStore {
	s := &MemoryStore{keys: make(map[string]domain.APIKey)}
	for _, k := range seed {
		s.keys[k.Key] = k
	}
	return s
}

func (s *MemoryStore) GetByKey(ctx context.Context, key string) (*domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.keys[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}
