package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/microcash/transactions-api/internal/apperrors"
	"github.com/microcash/transactions-api/internal/domain"
)

func seed(t *testing.T, s *Store, n int) []domain.Transaction {
	t.Helper()

	out := make([]domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		tx := domain.Transaction{
			Txid:            fmt.Sprintf("T45756448202601010000RANDOM%05d", i),
			Amount:          decimal.NewFromInt(int64(i + 1)),
			TransactionDate: time.Now().UTC(),
		}
		inserted, err := s.Insert(context.Background(), tx)
		if err != nil {
			t.Fatalf("seed insert failed: %v", err)
		}
		out = append(out, *inserted)
	}
	return out
}

func TestInsertAssignsSurrogateID(t *testing.T) {
	s := New()
	txs := seed(t, s, 3)

	for i, tx := range txs {
		if tx.ID != int64(i+1) {
			t.Fatalf("transaction %d has id %d, want %d", i, tx.ID, i+1)
		}
	}
}

func TestInsertRejectsDuplicateTxid(t *testing.T) {
	s := New()
	txs := seed(t, s, 1)

	_, err := s.Insert(context.Background(), domain.Transaction{Txid: txs[0].Txid})
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict on duplicate txid, got %v", err)
	}
}

func TestGetByTxidAbsentReturnsNil(t *testing.T) {
	s := New()

	tx, err := s.GetByTxid(context.Background(), "T45756448202601010000DOESNOTEXIST")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx != nil {
		t.Fatalf("expected nil transaction, got %+v", tx)
	}
}

func TestGetPageOffsets(t *testing.T) {
	s := New()
	txs := seed(t, s, 7)

	tests := []struct {
		page, pageSize int
		wantLen        int
		wantFirst      string
	}{
		{1, 3, 3, txs[0].Txid},
		{2, 3, 3, txs[3].Txid},
		{3, 3, 1, txs[6].Txid},
		{4, 3, 0, ""},
	}

	for _, tc := range tests {
		got, err := s.GetPage(context.Background(), tc.page, tc.pageSize)
		if err != nil {
			t.Fatalf("GetPage(%d, %d) failed: %v", tc.page, tc.pageSize, err)
		}
		if len(got) != tc.wantLen {
			t.Fatalf("GetPage(%d, %d) returned %d items, want %d", tc.page, tc.pageSize, len(got), tc.wantLen)
		}
		if tc.wantLen > 0 && got[0].Txid != tc.wantFirst {
			t.Fatalf("GetPage(%d, %d) first item %s, want %s", tc.page, tc.pageSize, got[0].Txid, tc.wantFirst)
		}
	}
}

func TestDeleteReturnsSnapshotAndRemoves(t *testing.T) {
	s := New()
	txs := seed(t, s, 2)

	snapshot, err := s.DeleteByTxid(context.Background(), txs[0].Txid)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if snapshot.Txid != txs[0].Txid {
		t.Fatalf("snapshot txid %s, want %s", snapshot.Txid, txs[0].Txid)
	}

	if got, _ := s.GetByTxid(context.Background(), txs[0].Txid); got != nil {
		t.Fatalf("record still present after delete")
	}
	if n, _ := s.Count(context.Background()); n != 1 {
		t.Fatalf("count %d after delete, want 1", n)
	}

	_, err = s.DeleteByTxid(context.Background(), txs[0].Txid)
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestUpdatePreservesSurrogateID(t *testing.T) {
	s := New()
	txs := seed(t, s, 1)

	changed := txs[0]
	changed.ID = 0
	changed.E2eID = "E45756448202601010000RANDOMSUFFIX"

	updated, err := s.Update(context.Background(), changed)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ID != txs[0].ID {
		t.Fatalf("update changed surrogate id: got %d, want %d", updated.ID, txs[0].ID)
	}

	_, err = s.Update(context.Background(), domain.Transaction{Txid: "T45756448202601010000DOESNOTEXIST"})
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("expected not found updating missing record, got %v", err)
	}
}
