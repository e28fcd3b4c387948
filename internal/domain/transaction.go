package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	TransactionID string          `json:"transaction_id"`
	Email         string          `json:"email"`
	Amount        decimal.Decimal `json:"amount"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ApplyStatus sets the transaction status from a webhook notification.
// Transitions are unconditional: a late or duplicate webhook overwrites a
// terminal status. A stricter policy (rejecting transitions out of completed
// or failed) only needs to change this method.
func (t *Transaction) ApplyStatus(next Status) {
	t.Status = next
}

type TransactionRepository interface {
	CreateTransaction(tx *Transaction) error
	ListTransactions() ([]Transaction, error)
	GetTransactionByExternalID(transactionID string) (*Transaction, error)
	UpdateTransaction(tx *Transaction) error
}
