package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/middleware"
	"github.com/VIDUSHH/kindnesshome-backend/internal/usecase"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/response"
)

type OAuthHandler struct {
	oauthUC *usecase.OAuthUsecase
	logger  *zap.Logger
}

func NewOAuthHandler(oauthUC *usecase.OAuthUsecase, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{oauthUC: oauthUC, logger: logger}
}

type googleTokenRequest struct {
	IDToken string `json:"id_token"`
}

func (h *OAuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req googleTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		response.Error(w, http.StatusBadRequest, "id_token required")
		return
	}

	user, tokens, err := h.oauthUC.GoogleSignIn(r.Context(), req.IDToken)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, sessionResponse{User: user, Tokens: tokens})
}

func (h *OAuthHandler) Link(w http.ResponseWriter, r *http.Request) {
	var req googleTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		response.Error(w, http.StatusBadRequest, "id_token required")
		return
	}

	user, err := h.oauthUC.Link(r.Context(), middleware.UserID(r.Context()), req.IDToken)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}

func (h *OAuthHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	user, err := h.oauthUC.Unlink(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}

func (h *OAuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.oauthUC.Status(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, status)
}
