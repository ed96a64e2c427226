package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lungsight/apiserver/internal/record"
	"github.com/lungsight/apiserver/internal/services"
	"github.com/lungsight/apiserver/internal/vision"
	"github.com/lungsight/apiserver/types"
)

// CXRHandler provides the model-loading, classification and inference-log
// endpoints.
type CXRHandler struct {
	cxrService *services.CXRService
	auth       *AuthHandler
}

func NewCXRHandler(cxrService *services.CXRService, auth *AuthHandler) *CXRHandler {
	return &CXRHandler{cxrService: cxrService, auth: auth}
}

// CXRRouter registers the classification routes. All of them require a
// logged-in conversation.
func CXRRouter(r chi.Router, handler *CXRHandler) {
	r.Group(func(r chi.Router) {
		r.Use(handler.auth.RequireSession, handler.auth.RequireLogin)
		r.Post("/model/load", handler.LoadModel)
		r.Post("/cxr/classify", handler.Classify)
		r.Post("/cxr/record", handler.Record)
	})
}

// LoadModel loads (or reloads) the classifier weights.
func (h *CXRHandler) LoadModel(w http.ResponseWriter, r *http.Request) {
	if err := h.cxrService.Load(); err != nil {
		switch {
		case errors.Is(err, vision.ErrWeightsNotFound):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Status: "success", Message: "Model loaded."})
}

// Classify resolves the image reference and runs one inference pass.
func (h *CXRHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Image == "" {
		writeError(w, http.StatusBadRequest, "image reference is required")
		return
	}

	result, err := h.cxrService.Classify(req.Image, req.Threshold)
	if err != nil {
		switch {
		case errors.Is(err, vision.ErrModelNotLoaded):
			writeError(w, http.StatusConflict, "Model not loaded. Load the model first.")
		case errors.Is(err, vision.ErrImageNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, vision.ErrInvalidImage):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "classification failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, ClassifyResponse{
		Status:       "success",
		AnalyzedFile: result.AnalyzedFile,
		Results:      result.Results,
	})
}

// Record appends classification results to the inference log under the
// logged-in user's identifier.
func (h *CXRHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	status, err := h.auth.SessionStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.cxrService.Record(r.Context(), req.Results, status.UUID); err != nil {
		if errors.Is(err, record.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "User not logged in. Cannot save inference.")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save inference")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Status:  "success",
		Message: "Inference saved for user " + status.UUID,
	})
}

type ClassifyRequest struct {
	Image     string  `json:"image"`
	Threshold float64 `json:"threshold,omitempty"`
}

type ClassifyResponse struct {
	Status       string                          `json:"status"`
	AnalyzedFile string                          `json:"analyzed_file"`
	Results      map[string]types.ConditionScore `json:"results"`
}

type RecordRequest struct {
	Results map[string]types.ConditionScore `json:"results"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
