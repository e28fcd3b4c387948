package handler

import (
	"encoding/json"
	"net/http"

	"crypto-checkout/internal/domain"
	"crypto-checkout/internal/errors"
	"crypto-checkout/internal/service"
)

type WebhookHandler struct {
	webhookService *service.WebhookService
}

func NewWebhookHandler(webhookService *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

type WebhookRequest struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

type WebhookResponse struct {
	Success     bool                `json:"success"`
	Transaction *domain.Transaction `json:"transaction"`
}

func (h *WebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewValidationError(errors.FieldViolation{
			Field:   "body",
			Message: "invalid JSON payload",
		}))
		return
	}

	transaction, err := h.webhookService.ProcessNotification(&service.WebhookRequest{
		TransactionID: req.TransactionID,
		Status:        req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, WebhookResponse{
		Success:     true,
		Transaction: transaction,
	})
}
