package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lungsight/apiserver/internal/report"
	"github.com/lungsight/apiserver/internal/services"
	"github.com/lungsight/apiserver/internal/store"
	"github.com/lungsight/apiserver/types"
)

// ReportHandler provides the PDF report generation and retrieval endpoints.
type ReportHandler struct {
	reportService *services.ReportService
	auth          *AuthHandler
}

func NewReportHandler(reportService *services.ReportService, auth *AuthHandler) *ReportHandler {
	return &ReportHandler{reportService: reportService, auth: auth}
}

// ReportRouter registers report routes. Both require a logged-in
// conversation.
func ReportRouter(r chi.Router, handler *ReportHandler) {
	r.Group(func(r chi.Router) {
		r.Use(handler.auth.RequireSession, handler.auth.RequireLogin)
		r.Post("/reports", handler.Generate)
		r.Get("/reports/{filename}", handler.Fetch)
	})
}

// Generate renders a report and saves it as a new artifact version.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req types.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	artifact, err := h.reportService.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, report.ErrRenderFailure) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save report")
		return
	}

	writeJSON(w, http.StatusCreated, ReportResponse{
		Status:   "success",
		Message:  "PDF report generated successfully.",
		Filename: artifact.Filename,
		Version:  artifact.Version,
	})
}

// Fetch streams the latest saved version of the named report.
func (h *ReportHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}

	reader, artifact, err := h.reportService.Fetch(r.Context(), filename)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

type ReportResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Version  int    `json:"version"`
}
