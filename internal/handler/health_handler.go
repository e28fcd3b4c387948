package handler

import (
	"net/http"
	"time"

	"crypto-checkout/internal/repository"
)

type HealthHandler struct {
	store repository.Store
}

func NewHealthHandler(store repository.Store) *HealthHandler {
	return &HealthHandler{
		store: store,
	}
}

type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Database  DatabaseHealth `json:"database"`
}

type DatabaseHealth struct {
	Connected bool `json:"connected"`
}

// Health reports process liveness and the storage handle state. It does not
// probe the database with a query.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Database: DatabaseHealth{
			Connected: h.store.Connected(),
		},
	})
}
