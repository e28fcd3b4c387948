package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"crypto-checkout/internal/service"
)

type TransactionsHandler struct {
	transactionsService *service.TransactionsService
}

func NewTransactionsHandler(transactionsService *service.TransactionsService) *TransactionsHandler {
	return &TransactionsHandler{
		transactionsService: transactionsService,
	}
}

func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.transactionsService.List()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transactions)
}

func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	transactionID := mux.Vars(r)["id"]

	transaction, err := h.transactionsService.GetByExternalID(transactionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transaction)
}
