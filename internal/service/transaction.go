// Package service owns the transaction lifecycle: creation, the one-way
// Created -> Processed transition, and deletion. All business validation
// happens here before any store call.
package service

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/microcash/transactions-api/internal/apperrors"
	"github.com/microcash/transactions-api/internal/domain"
	"github.com/microcash/transactions-api/internal/store"
)

var txidFormat = regexp.MustCompile(`^[A-Za-z0-9]{26,35}$`)

// IDGenerator produces transfer and end-to-end identifiers.
type IDGenerator interface {
	GenerateTxid() string
	GenerateEndToEndID(at time.Time) string
}

// UpdatePayload carries the payer/payee details merged into a transaction
// when it is processed. Txid must match the path parameter of the request.
type UpdatePayload struct {
	Txid string

	PayerName     string
	PayerDocument string
	PayerBank     string
	PayerBranch   string
	PayerAccount  string

	PayeeName     string
	PayeeDocument string
	PayeeBank     string
	PayeeBranch   string
	PayeeAccount  string
}

// TransactionService coordinates the store and the identifier generator.
type TransactionService struct {
	store  store.Store
	ids    IDGenerator
	logger *slog.Logger
}

// New wires a TransactionService with its collaborators.
func New(st store.Store, ids IDGenerator, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		store:  st,
		ids:    ids,
		logger: logger,
	}
}

// Create records a new transaction. The txid and transaction date are
// assigned here and never change afterwards.
func (s *TransactionService) Create(ctx context.Context, amount decimal.Decimal) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		s.logger.Error("rejected transaction with non-positive amount", "amount", amount)
		return nil, apperrors.New(apperrors.KindInvalidInput, "transaction amount must be greater than zero")
	}

	tx := domain.Transaction{
		Txid:            s.ids.GenerateTxid(),
		Amount:          amount.Round(2),
		TransactionDate: time.Now().UTC(),
	}

	created, err := s.store.Insert(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction created", "txid", created.Txid)
	return created, nil
}

// Get looks a transaction up by its txid.
func (s *TransactionService) Get(ctx context.Context, txid string) (*domain.Transaction, error) {
	tx, err := s.store.GetByTxid(ctx, txid)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		s.logger.Warn("transaction not found", "txid", txid)
		return nil, apperrors.New(apperrors.KindNotFound, "transaction not found")
	}
	return tx, nil
}

// List returns every recorded transaction.
func (s *TransactionService) List(ctx context.Context) ([]domain.Transaction, error) {
	return s.store.GetAll(ctx)
}

// ListPaged returns one page of transactions using a zero-based offset of
// (page-1)*pageSize.
func (s *TransactionService) ListPaged(ctx context.Context, page, pageSize int) ([]domain.Transaction, error) {
	if page <= 0 || pageSize <= 0 {
		return nil, apperrors.New(apperrors.KindInvalidInput, "page and pageSize must be greater than zero")
	}
	return s.store.GetPage(ctx, page, pageSize)
}

// Update processes a transaction exactly once: it assigns a fresh end-to-end
// id and merges the payer/payee details from the payload. Txid, amount and
// transaction date are never overwritten. A processed transaction cannot be
// updated again.
func (s *TransactionService) Update(ctx context.Context, txid string, payload *UpdatePayload) (*domain.Transaction, error) {
	if payload == nil {
		return nil, apperrors.New(apperrors.KindInvalidInput, "update payload must not be empty")
	}
	if payload.Txid != txid {
		s.logger.Error("txid in path does not match txid in payload", "path", txid, "payload", payload.Txid)
		return nil, apperrors.New(apperrors.KindInvalidInput, "txid in path does not match txid in payload")
	}
	if !txidFormat.MatchString(txid) {
		return nil, apperrors.New(apperrors.KindInvalidInput, "txid must be alphanumeric with 26 to 35 characters")
	}

	existing, err := s.store.GetByTxid(ctx, txid)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		s.logger.Warn("transaction not found for update", "txid", txid)
		return nil, apperrors.New(apperrors.KindNotFound, "transaction not found")
	}
	if existing.Processed() {
		s.logger.Error("attempted update of a processed transaction", "txid", txid, "e2eId", existing.E2eID)
		return nil, apperrors.New(apperrors.KindConflict, "transaction has already been processed and cannot be altered")
	}

	existing.E2eID = s.ids.GenerateEndToEndID(time.Now().UTC())
	existing.PayerName = payload.PayerName
	existing.PayerDocument = payload.PayerDocument
	existing.PayerBank = payload.PayerBank
	existing.PayerBranch = payload.PayerBranch
	existing.PayerAccount = payload.PayerAccount
	existing.PayeeName = payload.PayeeName
	existing.PayeeDocument = payload.PayeeDocument
	existing.PayeeBank = payload.PayeeBank
	existing.PayeeBranch = payload.PayeeBranch
	existing.PayeeAccount = payload.PayeeAccount

	updated, err := s.store.Update(ctx, *existing)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction processed", "txid", updated.Txid, "e2eId", updated.E2eID)
	return updated, nil
}

// Delete removes a transaction in any state and returns the pre-deletion
// snapshot.
func (s *TransactionService) Delete(ctx context.Context, txid string) (*domain.Transaction, error) {
	snapshot, err := s.store.DeleteByTxid(ctx, txid)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			s.logger.Warn("transaction not found for deletion", "txid", txid)
		}
		return nil, err
	}

	s.logger.Info("transaction deleted", "txid", txid)
	return snapshot, nil
}

// Count reports the number of stored transactions.
func (s *TransactionService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
