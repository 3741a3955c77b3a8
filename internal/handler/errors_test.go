package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid amount", xerrors.ErrInvalidAmount, http.StatusBadRequest},
		{"bad date window", xerrors.ErrInvalidDateWindow, http.StatusBadRequest},
		{"bad credentials", xerrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{"expired token", xerrors.ErrExpiredToken, http.StatusUnauthorized},
		{"forbidden", xerrors.ErrForbidden, http.StatusForbidden},
		{"campaign missing", xerrors.ErrCampaignNotFound, http.StatusNotFound},
		{"donation missing", xerrors.ErrDonationNotFound, http.StatusNotFound},
		{"duplicate email", xerrors.ErrEmailAlreadyInUse, http.StatusConflict},
		{"campaign inactive", xerrors.ErrCampaignNotActive, http.StatusConflict},
		{"illegal transition", xerrors.ErrInvalidTransition, http.StatusConflict},
		{"duplicate matching gift", xerrors.ErrMatchingGiftExists, http.StatusConflict},
		{"last auth method", xerrors.ErrLastAuthMethod, http.StatusConflict},
		{"persistence failure", xerrors.ErrPersistence, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestStatusForWrappedError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("settle donation: %w", xerrors.ErrCampaignNotActive)
	assert.Equal(t, http.StatusConflict, statusFor(wrapped))
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(rec, zap.NewNop(), errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, rec.Body.String(), "internal server error")
}
