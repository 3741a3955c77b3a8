package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/middleware"
	"github.com/VIDUSHH/kindnesshome-backend/internal/usecase"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/response"
)

type UserHandler struct {
	userUC *usecase.UserUsecase
	logger *zap.Logger
}

func NewUserHandler(userUC *usecase.UserUsecase, logger *zap.Logger) *UserHandler {
	return &UserHandler{userUC: userUC, logger: logger}
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req usecase.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userUC.UpdateProfile(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) Donations(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 20)
	if page < 1 {
		page = 1
	}

	donations, err := h.userUC.Donations(r.Context(), middleware.UserID(r.Context()), perPage, (page-1)*perPage)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, donations)
}

func (h *UserHandler) AddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req usecase.AddPaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pm, err := h.userUC.AddPaymentMethod(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusCreated, pm)
}

func (h *UserHandler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.userUC.PaymentMethods(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, methods)
}

func (h *UserHandler) SetDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	err := h.userUC.SetDefaultPaymentMethod(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "default payment method updated"})
}

func (h *UserHandler) RemovePaymentMethod(w http.ResponseWriter, r *http.Request) {
	err := h.userUC.RemovePaymentMethod(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "payment method removed"})
}

func (h *UserHandler) TaxReceipts(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", time.Now().Year())

	summary, err := h.userUC.TaxReceipts(r.Context(), middleware.UserID(r.Context()), year)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}
