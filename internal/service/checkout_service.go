package service

import (
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"crypto-checkout/internal/domain"
	"crypto-checkout/internal/errors"
	"crypto-checkout/internal/repository"
)

type CheckoutService struct {
	store          repository.Store
	paymentBaseURL string
	logger         *slog.Logger
}

func NewCheckoutService(store repository.Store, paymentBaseURL string, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		store:          store,
		paymentBaseURL: paymentBaseURL,
		logger:         logger,
	}
}

type CheckoutRequest struct {
	Amount decimal.Decimal
	Email  string
}

type CheckoutResult struct {
	TransactionID string
	Status        domain.Status
	PaymentURL    string
}

// Checkout validates the payment request, persists a pending transaction and
// returns the simulated payment URL. Nothing is persisted when validation
// fails.
func (s *CheckoutService) Checkout(req *CheckoutRequest) (*CheckoutResult, error) {
	if violations := validateCheckout(req); len(violations) > 0 {
		s.logger.Warn("Checkout request rejected", "violations", len(violations))
		return nil, errors.NewValidationError(violations...)
	}

	transaction := &domain.Transaction{
		TransactionID: uuid.NewString(),
		Email:         req.Email,
		Amount:        req.Amount,
		Status:        domain.StatusPending,
	}

	if err := s.store.CreateTransaction(transaction); err != nil {
		s.logger.Error("Failed to persist checkout transaction", "error", err)
		return nil, err
	}

	// No call to a real payment provider is made; the URL embeds the
	// transaction handle the provider would later report back.
	paymentURL := fmt.Sprintf("%s/%s", s.paymentBaseURL, transaction.TransactionID)

	s.logger.Info("Checkout session created",
		"transaction_id", transaction.TransactionID,
		"amount", transaction.Amount,
		"email", transaction.Email)

	return &CheckoutResult{
		TransactionID: transaction.TransactionID,
		Status:        transaction.Status,
		PaymentURL:    paymentURL,
	}, nil
}

func validateCheckout(req *CheckoutRequest) []errors.FieldViolation {
	var violations []errors.FieldViolation

	if req.Amount.Sign() <= 0 {
		violations = append(violations, errors.FieldViolation{
			Field:   "amount",
			Message: "amount must be greater than zero",
		})
	} else if req.Amount.Exponent() < -2 {
		violations = append(violations, errors.FieldViolation{
			Field:   "amount",
			Message: "amount must have at most 2 decimal places",
		})
	}

	if req.Email == "" {
		violations = append(violations, errors.FieldViolation{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validEmail(req.Email) {
		violations = append(violations, errors.FieldViolation{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}

	return violations
}

func validEmail(address string) bool {
	parsed, err := mail.ParseAddress(address)
	return err == nil && parsed.Address == address
}
