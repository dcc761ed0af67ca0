// Package handler exposes the fixed report endpoints.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/common"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/reports"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/session"
)

// ReportsHandler serves the report endpoints.
type ReportsHandler struct {
	service *reports.Service
	state   *session.State
	logger  *slog.Logger
}

// NewReportsHandler constructs a new handler.
func NewReportsHandler(service *reports.Service, state *session.State, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{service: service, state: state, logger: logger}
}

// Summary returns the per-region sales summary.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	snap, err := h.state.Dataset()
	if err != nil {
		common.RespondError(w, http.StatusConflict, err.Error())
		return
	}

	summary, err := h.service.SalesSummary(snap.Table, snap.Registry)
	if err != nil {
		if errors.Is(err, reports.ErrColumnsNotFound) {
			common.RespondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		common.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusOK, summary)
}

// Trend returns the trend heuristic's verdict.
func (h *ReportsHandler) Trend(w http.ResponseWriter, r *http.Request) {
	snap, err := h.state.Dataset()
	if err != nil {
		common.RespondError(w, http.StatusConflict, err.Error())
		return
	}

	trend, err := h.service.PredictTrend(snap.Table, snap.Registry)
	if err != nil {
		if errors.Is(err, reports.ErrColumnsNotFound) {
			common.RespondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		common.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusOK, trend)
}

// ExportSummary downloads the per-region summary, as CSV by default or as a
// PDF report with ?format=pdf.
func (h *ReportsHandler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	snap, err := h.state.Dataset()
	if err != nil {
		common.RespondError(w, http.StatusConflict, err.Error())
		return
	}

	summary, err := h.service.SalesSummary(snap.Table, snap.Registry)
	if err != nil {
		if errors.Is(err, reports.ErrColumnsNotFound) {
			common.RespondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		common.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var (
		data        []byte
		contentType string
		filename    string
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		data, err = reports.ExportCSV(summary)
		contentType, filename = "text/csv", "sales_summary.csv"
	case "pdf":
		data, err = reports.ExportPDF(summary)
		contentType, filename = "application/pdf", "sales_report.pdf"
	default:
		common.RespondError(w, http.StatusBadRequest, "unsupported export format: "+format)
		return
	}
	if err != nil {
		common.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write export", slog.Any("error", err))
	}
}
