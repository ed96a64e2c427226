package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lungsight/apiserver/internal/dispatch"
)

// ChatHandler asks the external orchestrator which capability should handle
// an utterance. The decision itself is made outside this service.
type ChatHandler struct {
	dispatcher dispatch.Dispatcher
	auth       *AuthHandler
}

// NewChatHandler constructs the handler. dispatcher may be nil when no
// orchestrator is configured.
func NewChatHandler(dispatcher dispatch.Dispatcher, auth *AuthHandler) *ChatHandler {
	return &ChatHandler{dispatcher: dispatcher, auth: auth}
}

// ChatRouter registers the routing endpoint. It requires a session but not a
// login: unauthenticated conversations still get routed (to auth).
func ChatRouter(r chi.Router, handler *ChatHandler) {
	r.With(handler.auth.RequireSession).Post("/chat/route", handler.Route)
}

// Route returns the capability chosen for the utterance.
func (h *ChatHandler) Route(w http.ResponseWriter, r *http.Request) {
	if h.dispatcher == nil {
		writeError(w, http.StatusServiceUnavailable, "chat routing is not configured")
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Utterance = strings.TrimSpace(req.Utterance)
	if req.Utterance == "" {
		writeError(w, http.StatusBadRequest, "utterance is required")
		return
	}

	status, err := h.auth.SessionStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	capability, err := h.dispatcher.Route(r.Context(), status, req.Utterance)
	if err != nil {
		writeError(w, http.StatusBadGateway, "routing failed")
		return
	}

	writeJSON(w, http.StatusOK, RouteResponse{Status: "success", Capability: capability})
}

type RouteRequest struct {
	Utterance string `json:"utterance"`
}

type RouteResponse struct {
	Status     string              `json:"status"`
	Capability dispatch.Capability `json:"capability"`
}
