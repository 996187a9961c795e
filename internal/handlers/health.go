package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const healthPingTimeout = 2 * time.Second

// HealthHandler handles the service banner and health probe
type HealthHandler struct {
	db *pgxpool.Pool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{db: db}
}

// Root handles GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, MessageResponse{Message: "TAPP Club API is running"})
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health handles GET /health, answering 503 when the database does not
// respond to a ping in time.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		respondError(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
}
