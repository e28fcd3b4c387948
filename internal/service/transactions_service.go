package service

import (
	"log/slog"

	"crypto-checkout/internal/domain"
	"crypto-checkout/internal/repository"
)

// TransactionsService answers read-only queries over the transaction store.
type TransactionsService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewTransactionsService(store repository.Store, logger *slog.Logger) *TransactionsService {
	return &TransactionsService{
		store:  store,
		logger: logger,
	}
}

func (s *TransactionsService) List() ([]domain.Transaction, error) {
	return s.store.ListTransactions()
}

func (s *TransactionsService) GetByExternalID(transactionID string) (*domain.Transaction, error) {
	return s.store.GetTransactionByExternalID(transactionID)
}
