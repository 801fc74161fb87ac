// Package apikey resolves API keys to authorized principals. It sits
// upstream of the transaction endpoints; only calls carrying a known key
// reach them.
package apikey

import (
	"context"
	"log/slog"

	"github.com/microcash/transactions-api/internal/apperrors"
	"github.com/microcash/transactions-api/internal/domain"
)

// Store looks up API-key records. GetByKey returns (nil, nil) when the key
// is unknown.
type Store interface {
	GetByKey(ctx context.Context, key string) (*domain.APIKey, error)
}

// Service validates presented keys against the store.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService wires a Service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// GetByKey returns the principal for the presented key, or NotFound.
func (s *Service) GetByKey(ctx context.Context, key string) (*domain.APIKey, error) {
	record, err := s.store.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		s.logger.Warn("unknown api key presented")
		return nil, apperrors.New(apperrors.KindNotFound, "api key not found")
	}
	return record, nil
}
