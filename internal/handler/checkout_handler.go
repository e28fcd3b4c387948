package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"crypto-checkout/internal/domain"
	"crypto-checkout/internal/errors"
	"crypto-checkout/internal/service"
)

type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

type CheckoutRequest struct {
	Amount json.Number `json:"amount"`
	Email  string      `json:"email"`
}

type CheckoutResponse struct {
	Success       bool          `json:"success"`
	TransactionID string        `json:"transaction_id"`
	Status        domain.Status `json:"status"`
	PaymentURL    string        `json:"payment_url"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewValidationError(errors.FieldViolation{
			Field:   "body",
			Message: "invalid JSON payload",
		}))
		return
	}

	var violations []errors.FieldViolation
	var amount decimal.Decimal

	if req.Amount == "" {
		violations = append(violations, errors.FieldViolation{
			Field:   "amount",
			Message: "amount is required",
		})
	} else {
		parsed, err := decimal.NewFromString(req.Amount.String())
		if err != nil {
			violations = append(violations, errors.FieldViolation{
				Field:   "amount",
				Message: "amount must be a number",
			})
		} else {
			amount = parsed
		}
	}

	if len(violations) > 0 {
		writeError(w, errors.NewValidationError(violations...))
		return
	}

	result, err := h.checkoutService.Checkout(&service.CheckoutRequest{
		Amount: amount,
		Email:  req.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CheckoutResponse{
		Success:       true,
		TransactionID: result.TransactionID,
		Status:        result.Status,
		PaymentURL:    result.PaymentURL,
	})
}
