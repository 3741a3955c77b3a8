package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/internal/middleware"
	"github.com/VIDUSHH/kindnesshome-backend/internal/usecase"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/response"
)

type DonationHandler struct {
	donationUC *usecase.DonationUsecase
	giftUC     *usecase.MatchingGiftUsecase
	logger     *zap.Logger
}

func NewDonationHandler(donationUC *usecase.DonationUsecase, giftUC *usecase.MatchingGiftUsecase, logger *zap.Logger) *DonationHandler {
	return &DonationHandler{donationUC: donationUC, giftUC: giftUC, logger: logger}
}

type createDonationRequest struct {
	OrganizationID       string                    `json:"organization_id"`
	Amount               decimal.Decimal           `json:"amount"`
	Currency             string                    `json:"currency"`
	PaymentMethod        domain.PaymentMethodType  `json:"payment_method"`
	CoverFees            bool                      `json:"cover_fees"`
	IsRecurring          bool                      `json:"is_recurring"`
	RecurringInterval    *domain.RecurringInterval `json:"recurring_interval"`
	IsAnonymous          bool                      `json:"is_anonymous"`
	DonorMessage         string                    `json:"donor_message"`
	MatchingGiftEligible bool                      `json:"matching_gift_eligible"`
	DedicationType       *domain.DedicationType    `json:"dedication_type"`
	DedicationName       string                    `json:"dedication_name"`
}

func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.donationUC.Create(r.Context(), usecase.CreateDonationRequest{
		UserID:               middleware.UserID(r.Context()),
		OrganizationID:       req.OrganizationID,
		Amount:               req.Amount,
		Currency:             req.Currency,
		PaymentMethod:        req.PaymentMethod,
		CoverFees:            req.CoverFees,
		IsRecurring:          req.IsRecurring,
		RecurringInterval:    req.RecurringInterval,
		IsAnonymous:          req.IsAnonymous,
		DonorMessage:         req.DonorMessage,
		MatchingGiftEligible: req.MatchingGiftEligible,
		DedicationType:       req.DedicationType,
		DedicationName:       req.DedicationName,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("donation created", zap.String("donation_id", d.ID))
	response.JSON(w, http.StatusCreated, d)
}

type bulkImportRequest struct {
	Donations []usecase.BulkDonationItem `json:"donations"`
}

// BulkImport records a batch of already-settled donations, e.g. history
// carried over from another platform.
func (h *DonationHandler) BulkImport(w http.ResponseWriter, r *http.Request) {
	var req bulkImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.donationUC.BulkImport(r.Context(), req.Donations)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("donations imported", zap.Int("count", len(created)))
	response.JSON(w, http.StatusCreated, map[string]any{
		"created":   len(created),
		"donations": created,
	})
}

func (h *DonationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	d, err := h.donationUC.Confirm(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, d)
}

func (h *DonationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	d, err := h.donationUC.Cancel(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, d)
}

func (h *DonationHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.donationUC.Get(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, d)
}

func (h *DonationHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	rc, err := h.donationUC.GetReceipt(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, rc)
}

type matchingGiftRequest struct {
	EmployerName  string           `json:"employer_name"`
	EmployerEIN   string           `json:"employer_ein"`
	EmployeeEmail string           `json:"employee_email"`
	MatchRatio    *decimal.Decimal `json:"match_ratio"`
}

func (h *DonationHandler) CreateMatchingGift(w http.ResponseWriter, r *http.Request) {
	var req matchingGiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mg, err := h.giftUC.Create(r.Context(), usecase.CreateMatchingGiftRequest{
		DonationID:    chi.URLParam(r, "id"),
		UserID:        middleware.UserID(r.Context()),
		EmployerName:  req.EmployerName,
		EmployerEIN:   req.EmployerEIN,
		EmployeeEmail: req.EmployeeEmail,
		MatchRatio:    req.MatchRatio,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, mg)
}
