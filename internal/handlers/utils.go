package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

type contextKey string

const contextSessionKey contextKey = "session_id"

// ErrorResponse is the uniform failure envelope: every component error is
// recovered locally and surfaced as a structured status/message pair, never
// raised across the HTTP boundary.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func sessionIDFromContext(ctx context.Context) (string, error) {
	if id, ok := ctx.Value(contextSessionKey).(string); ok && id != "" {
		return id, nil
	}
	return "", errors.New("missing session")
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Status: "error", Message: message})
}

// Healthz reports process liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
