package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lungsight/apiserver/internal/search"
)

// SearchHandler provides the medical Q&A pass-through endpoint.
type SearchHandler struct {
	searchService *search.Service
	auth          *AuthHandler
}

// NewSearchHandler constructs the handler. searchService may be nil when the
// capability is not configured.
func NewSearchHandler(searchService *search.Service, auth *AuthHandler) *SearchHandler {
	return &SearchHandler{searchService: searchService, auth: auth}
}

// SearchRouter registers the search route.
func SearchRouter(r chi.Router, handler *SearchHandler) {
	r.With(handler.auth.RequireSession, handler.auth.RequireLogin).
		Get("/search", handler.Query)
}

// Query forwards the question to the search backend.
func (h *SearchHandler) Query(w http.ResponseWriter, r *http.Request) {
	if h.searchService == nil {
		writeError(w, http.StatusServiceUnavailable, "search is not configured")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	max := 0
	if raw := r.URL.Query().Get("max"); raw != "" {
		max, _ = strconv.Atoi(raw)
	}

	results, err := h.searchService.Query(r.Context(), query, max)
	if err != nil {
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{Status: "success", Results: results})
}

type SearchResponse struct {
	Status  string          `json:"status"`
	Results []search.Result `json:"results"`
}
