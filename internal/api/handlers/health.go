package handlers

import (
	"context"
	"log"
	"net/http"
	"time"
)

// Pinger is satisfied by *sql.DB and by small adapters around pgxpool.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and, when DB is set, store connectivity.
type HealthHandler struct {
	DB Pinger
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		log.Printf("health check failed: err=%v", err)
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
			"status":   "error",
			"database": "disconnected",
		})
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "database": "connected"})
}
