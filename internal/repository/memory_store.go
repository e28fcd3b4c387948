package repository

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"crypto-checkout/internal/domain"
	"crypto-checkout/internal/errors"
)

// MemoryStore is an in-memory TransactionRepository used in test mode. It is
// selected by STORAGE_DRIVER=memory at startup and holds records only for
// the lifetime of the process.
type MemoryStore struct {
	mu           sync.RWMutex
	transactions map[string]domain.Transaction
	order        []string
	logger       *slog.Logger
}

func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]domain.Transaction),
		logger:       logger,
	}
}

func (s *MemoryStore) CreateTransaction(tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[tx.TransactionID]; exists {
		s.logger.Warn("Duplicate transaction_id on insert", "transaction_id", tx.TransactionID)
		return errors.ErrDuplicateTransaction
	}

	now := time.Now().UTC()
	tx.ID = uuid.New()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	s.transactions[tx.TransactionID] = *tx
	s.order = append(s.order, tx.TransactionID)
	return nil
}

func (s *MemoryStore) ListTransactions() ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transactions := make([]domain.Transaction, 0, len(s.order))
	for _, id := range s.order {
		transactions = append(transactions, s.transactions[id])
	}
	return transactions, nil
}

func (s *MemoryStore) GetTransactionByExternalID(transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, exists := s.transactions[transactionID]
	if !exists {
		return nil, errors.ErrTransactionNotFound
	}
	return &tx, nil
}

func (s *MemoryStore) UpdateTransaction(tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.transactions[tx.TransactionID]
	if !exists {
		return errors.ErrTransactionNotFound
	}

	stored.Status = tx.Status
	stored.UpdatedAt = time.Now().UTC()
	s.transactions[tx.TransactionID] = stored

	tx.ID = stored.ID
	tx.CreatedAt = stored.CreatedAt
	tx.UpdatedAt = stored.UpdatedAt
	return nil
}

// Connected always reports true; there is no backing connection.
func (s *MemoryStore) Connected() bool {
	return true
}

func (s *MemoryStore) Close() error {
	return nil
}

// Reset drops every record. Test-only; the running system never deletes.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = make(map[string]domain.Transaction)
	s.order = nil
}
