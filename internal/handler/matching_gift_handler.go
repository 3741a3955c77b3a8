package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/internal/usecase"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/response"
)

type MatchingGiftHandler struct {
	giftUC *usecase.MatchingGiftUsecase
	logger *zap.Logger
}

func NewMatchingGiftHandler(giftUC *usecase.MatchingGiftUsecase, logger *zap.Logger) *MatchingGiftHandler {
	return &MatchingGiftHandler{giftUC: giftUC, logger: logger}
}

// UpdateStatus advances a matching gift through its lifecycle. The
// state machine in the usecase rejects anything but a legal forward
// transition.
func (h *MatchingGiftHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.MatchingGiftStatus `json:"status"`
		Notes  string                    `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mg, err := h.giftUC.Transition(r.Context(), chi.URLParam(r, "id"), req.Status, req.Notes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("matching gift status updated",
		zap.String("gift_id", mg.ID), zap.String("status", string(mg.Status)))
	response.JSON(w, http.StatusOK, mg)
}
