// Package handler exposes the authentication endpoints.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/auth"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/common"
)

// AuthHandler serves register and login.
type AuthHandler struct {
	service *auth.Service
	logger  *slog.Logger
}

// NewAuthHandler constructs a new handler.
func NewAuthHandler(service *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserAlreadyExists) {
			common.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusCreated, result)
}

// Login authenticates stored credentials.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			common.RespondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		common.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
