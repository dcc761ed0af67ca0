// Package handler exposes the copilot endpoints: querying, training and the
// insight memory.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/common"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/copilot"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/model"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/session"
)

// CopilotHandler serves the copilot endpoints.
type CopilotHandler struct {
	service *copilot.Service
	logger  *slog.Logger
}

// NewCopilotHandler constructs a new handler.
func NewCopilotHandler(service *copilot.Service, logger *slog.Logger) *CopilotHandler {
	return &CopilotHandler{service: service, logger: logger}
}

type queryRequest struct {
	Query string `json:"query"`
}

// Query runs one free-text query against the active dataset.
func (h *CopilotHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		common.RespondError(w, http.StatusBadRequest, "query is required")
		return
	}

	resp, err := h.service.Query(r.Context(), req.Query)
	if err != nil {
		if errors.Is(err, session.ErrNoDataset) {
			common.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		common.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

type trainRequest struct {
	Target   string `json:"target"`
	Epochs   int    `json:"epochs"`
	Clusters int    `json:"clusters"`
}

// Train runs a training pipeline against the active dataset. Epoch progress
// is logged; the response carries the final scores.
func (h *CopilotHandler) Train(w http.ResponseWriter, r *http.Request) {
	var req trainRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Target == "" {
		common.RespondError(w, http.StatusBadRequest, "target is required")
		return
	}

	cfg := model.TrainingConfig{Epochs: req.Epochs, Clusters: req.Clusters}
	result, err := h.service.Train(r.Context(), req.Target, cfg, func(done, total int) {
		if done%10 == 0 || done == total {
			h.logger.Debug("training progress", slog.Int("epoch", done), slog.Int("total", total))
		}
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoDataset):
			common.RespondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, model.ErrTargetNotNumeric),
			errors.Is(err, model.ErrNoNumericPredictors),
			errors.Is(err, model.ErrNotEnoughRows):
			common.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			common.RespondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Memory lists recorded insights, optionally filtered with ?q=.
func (h *CopilotHandler) Memory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.service.Memory(query, limit)
	if err != nil {
		common.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{"insights": entries})
}

// ClearMemory wipes all recorded insights.
func (h *CopilotHandler) ClearMemory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearMemory(); err != nil {
		common.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusNoContent, nil)
}
