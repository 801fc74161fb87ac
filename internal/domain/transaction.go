package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a recorded funds transfer. The txid is assigned once at
// creation and never changes; a non-empty e2eId marks the record as
// processed, after which no field mutation is permitted except deletion.
type Transaction struct {
	ID    int64  `json:"id"`
	Txid  string `json:"txid"`
	E2eID string `json:"e2eId,omitempty"`

	// Payer details, filled in when the transaction is processed.
	PayerName     string `json:"payerName,omitempty"`
	PayerDocument string `json:"payerDocument,omitempty"`
	PayerBank     string `json:"payerBank,omitempty"`
	PayerBranch   string `json:"payerBranch,omitempty"`
	PayerAccount  string `json:"payerAccount,omitempty"`

	// Payee details, filled in when the transaction is processed.
	PayeeName     string `json:"payeeName,omitempty"`
	PayeeDocument string `json:"payeeDocument,omitempty"`
	PayeeBank     string `json:"payeeBank,omitempty"`
	PayeeBranch   string `json:"payeeBranch,omitempty"`
	PayeeAccount  string `json:"payeeAccount,omitempty"`

	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transactionDate"`
}

// Processed reports whether the transaction has reached its terminal
// mutability state.
func (t *Transaction) Processed() bool {
	return t.E2eID != ""
}
