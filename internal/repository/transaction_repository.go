package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"crypto-checkout/internal/domain"
	"crypto-checkout/internal/errors"
)

type transactionRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransactionRepository(db SQLExecutor, logger *slog.Logger) domain.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *transactionRepository) CreateTransaction(tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions
		(id, transaction_id, email, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	id := uuid.New()
	now := time.Now().UTC()

	_, err := r.db.Exec(
		query,
		id,
		tx.TransactionID,
		tx.Email,
		tx.Amount.String(),
		tx.Status,
		now,
		now,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				r.logger.Warn("Duplicate transaction_id on insert", "transaction_id", tx.TransactionID)
				return errors.ErrDuplicateTransaction
			}
		}
		r.logger.Error("Failed to create transaction",
			"transaction_id", tx.TransactionID,
			"email", tx.Email,
			"amount", tx.Amount,
			"error", err)
		return errors.NewAppError(errors.StorageError, "failed to create transaction").WithDetails(err.Error())
	}

	tx.ID = id
	tx.CreatedAt = now
	tx.UpdatedAt = now
	r.logger.Info("Transaction created successfully", "transaction_id", tx.TransactionID)
	return nil
}

func (r *transactionRepository) ListTransactions() ([]domain.Transaction, error) {
	query := `
		SELECT id, transaction_id, email, amount, status, created_at, updated_at
		FROM transactions ORDER BY created_at
	`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list transactions", "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to list transactions").WithDetails(err.Error())
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		transaction, err := scanTransactionRow(rows.Scan)
		if err != nil {
			r.logger.Error("Failed to scan transaction row", "error", err)
			return nil, err
		}
		transactions = append(transactions, *transaction)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.StorageError, "failed to read transactions").WithDetails(err.Error())
	}

	return transactions, nil
}

func (r *transactionRepository) GetTransactionByExternalID(transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT id, transaction_id, email, amount, status, created_at, updated_at
		FROM transactions WHERE transaction_id = $1
	`

	row := r.db.QueryRow(query, transactionID)
	transaction, err := scanTransactionRow(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Warn("Transaction not found", "transaction_id", transactionID)
			return nil, errors.ErrTransactionNotFound
		}
		if _, ok := err.(*errors.AppError); ok {
			return nil, err
		}
		r.logger.Error("Failed to get transaction", "transaction_id", transactionID, "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to get transaction").WithDetails(err.Error())
	}

	return transaction, nil
}

func (r *transactionRepository) UpdateTransaction(tx *domain.Transaction) error {
	query := `UPDATE transactions SET status = $1, updated_at = $2 WHERE transaction_id = $3`

	now := time.Now().UTC()
	result, err := r.db.Exec(query, tx.Status, now, tx.TransactionID)
	if err != nil {
		r.logger.Error("Failed to update transaction",
			"transaction_id", tx.TransactionID, "status", tx.Status, "error", err)
		return errors.NewAppError(errors.StorageError, "failed to update transaction").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.StorageError, "failed to get rows affected").WithDetails(err.Error())
	}

	if rowsAffected == 0 {
		r.logger.Warn("No transaction found to update", "transaction_id", tx.TransactionID)
		return errors.ErrTransactionNotFound
	}

	tx.UpdatedAt = now
	r.logger.Info("Transaction updated", "transaction_id", tx.TransactionID, "status", tx.Status)
	return nil
}

// scanTransactionRow reads one transactions row through the given Scan
// function, shared between QueryRow and Rows iteration.
func scanTransactionRow(scan func(dest ...interface{}) error) (*domain.Transaction, error) {
	var transaction domain.Transaction
	var amountStr string

	err := scan(
		&transaction.ID,
		&transaction.TransactionID,
		&transaction.Email,
		&amountStr,
		&transaction.Status,
		&transaction.CreatedAt,
		&transaction.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, errors.NewAppError(errors.StorageError, "failed to parse amount").WithDetails(err.Error())
	}
	transaction.Amount = amount

	return &transaction, nil
}
