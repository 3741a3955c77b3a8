package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/middleware"
	"github.com/VIDUSHH/kindnesshome-backend/internal/usecase"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/response"
)

type AuthHandler struct {
	authUC *usecase.AuthUsecase
	logger *zap.Logger
}

func NewAuthHandler(authUC *usecase.AuthUsecase, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authUC: authUC, logger: logger}
}

type sessionResponse struct {
	User   any                `json:"user"`
	Tokens *usecase.TokenPair `json:"tokens"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req usecase.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, tokens, err := h.authUC.Register(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("user registered", zap.String("user_id", user.ID))
	response.JSON(w, http.StatusCreated, sessionResponse{User: user, Tokens: tokens})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, tokens, err := h.authUC.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, sessionResponse{User: user, Tokens: tokens})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	access, err := h.authUC.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"access_token": access})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authUC.Me(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

// Logout is stateless: tokens are short-lived JWTs, so the server only
// acknowledges and the client discards its pair.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
