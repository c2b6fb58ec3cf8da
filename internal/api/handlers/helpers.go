package handlers

import (
	"encoding/json"
	"errors"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/obs"
	"log"
	"net/http"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: req_id=%s method=%s path=%s err=%v",
			obs.RequestID(r.Context()), r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writePlanError maps planner errors onto HTTP statuses.
func writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := obs.RequestID(r.Context())
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		log.Printf("req_id=%s op=plan.request status=400 err=%v", reqID, err)
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		log.Printf("req_id=%s op=plan.request status=404 err=%v", reqID, err)
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		log.Printf("req_id=%s op=plan.request status=500 err=%v", reqID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
