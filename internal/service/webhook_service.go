package service

import (
	"log/slog"
	"time"

	"crypto-checkout/internal/domain"
	"crypto-checkout/internal/errors"
	"crypto-checkout/internal/repository"
)

type WebhookService struct {
	store          repository.Store
	logger         *slog.Logger
	maxRetries     int
	retryBaseDelay time.Duration
	sleep          func(time.Duration)
}

func NewWebhookService(store repository.Store, maxRetries int, retryBaseDelay time.Duration, logger *slog.Logger) *WebhookService {
	return &WebhookService{
		store:          store,
		logger:         logger,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		sleep:          time.Sleep,
	}
}

type WebhookRequest struct {
	TransactionID string
	Status        string
}

// ProcessNotification applies a provider status notification to the
// referenced transaction and persists it with bounded retry.
func (s *WebhookService) ProcessNotification(req *WebhookRequest) (*domain.Transaction, error) {
	var violations []errors.FieldViolation

	if req.TransactionID == "" {
		violations = append(violations, errors.FieldViolation{
			Field:   "transaction_id",
			Message: "transaction_id is required",
		})
	}

	status := domain.Status(req.Status)
	if status != domain.StatusCompleted && status != domain.StatusFailed {
		violations = append(violations, errors.FieldViolation{
			Field:   "status",
			Message: `status must be "completed" or "failed"`,
		})
	}

	if len(violations) > 0 {
		s.logger.Warn("Webhook payload rejected", "transaction_id", req.TransactionID, "status", req.Status)
		return nil, errors.NewValidationError(violations...)
	}

	transaction, err := s.store.GetTransactionByExternalID(req.TransactionID)
	if err != nil {
		return nil, err
	}

	transaction.ApplyStatus(status)

	if err := s.updateWithRetry(transaction); err != nil {
		return nil, err
	}

	s.logger.Info("Webhook applied",
		"transaction_id", transaction.TransactionID,
		"status", transaction.Status)

	return transaction, nil
}

// updateWithRetry persists the mutated transaction, retrying storage
// failures up to maxRetries times with delays of retryBaseDelay * 2^attempt.
// A missing row is not retried; waiting cannot bring it back.
func (s *WebhookService) updateWithRetry(tx *domain.Transaction) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = s.store.UpdateTransaction(tx)
		if err == nil {
			return nil
		}

		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.TransactionNotFound {
			return err
		}

		if attempt >= s.maxRetries {
			break
		}

		delay := s.retryBaseDelay * time.Duration(1<<attempt)
		s.logger.Warn("Retrying transaction update",
			"transaction_id", tx.TransactionID,
			"attempt", attempt+1,
			"delay", delay)
		s.sleep(delay)
	}

	s.logger.Error("Transaction update failed after retries",
		"transaction_id", tx.TransactionID,
		"retries", s.maxRetries,
		"error", err)
	return err
}
