package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/pkg/response"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

// statusFor maps domain sentinels to HTTP statuses. Anything unmapped
// is treated as an internal failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrInvalidAmount),
		errors.Is(err, xerrors.ErrInvalidInput),
		errors.Is(err, xerrors.ErrInvalidRequest),
		errors.Is(err, xerrors.ErrInvalidDateWindow),
		errors.Is(err, xerrors.ErrInvalidEIN),
		errors.Is(err, xerrors.ErrEmailRequired),
		errors.Is(err, xerrors.ErrPasswordRequired),
		errors.Is(err, xerrors.ErrInvalidEmailFormat),
		errors.Is(err, xerrors.ErrPasswordTooShort):
		return http.StatusBadRequest

	case errors.Is(err, xerrors.ErrUnauthorized),
		errors.Is(err, xerrors.ErrInvalidCredentials),
		errors.Is(err, xerrors.ErrInvalidToken),
		errors.Is(err, xerrors.ErrExpiredToken):
		return http.StatusUnauthorized

	case errors.Is(err, xerrors.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, xerrors.ErrNotFound),
		errors.Is(err, xerrors.ErrCampaignNotFound),
		errors.Is(err, xerrors.ErrDonationNotFound),
		errors.Is(err, xerrors.ErrOrganizationNotFound),
		errors.Is(err, xerrors.ErrUserNotFound),
		errors.Is(err, xerrors.ErrEINNotRecognized),
		errors.Is(err, xerrors.ErrPaymentMethodNotFound):
		return http.StatusNotFound

	case errors.Is(err, xerrors.ErrAlreadyExists),
		errors.Is(err, xerrors.ErrEmailAlreadyInUse),
		errors.Is(err, xerrors.ErrUserAlreadyExists),
		errors.Is(err, xerrors.ErrEINAlreadyRegistered),
		errors.Is(err, xerrors.ErrMatchingGiftExists),
		errors.Is(err, xerrors.ErrCampaignHasDonations),
		errors.Is(err, xerrors.ErrCampaignNotActive),
		errors.Is(err, xerrors.ErrOrganizationInactive),
		errors.Is(err, xerrors.ErrDonationNotPending),
		errors.Is(err, xerrors.ErrDonationNotCompleted),
		errors.Is(err, xerrors.ErrNotMatchingEligible),
		errors.Is(err, xerrors.ErrInvalidTransition),
		errors.Is(err, xerrors.ErrNotRecurring),
		errors.Is(err, xerrors.ErrReceiptNotAvailable),
		errors.Is(err, xerrors.ErrProviderLinked),
		errors.Is(err, xerrors.ErrProviderNotLinked),
		errors.Is(err, xerrors.ErrSocialAccountOnly),
		errors.Is(err, xerrors.ErrLastAuthMethod):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a domain error on the standard envelope. Internal
// failures are logged with detail and surface a generic message.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		response.Error(w, status, "internal server error")
		return
	}
	response.Error(w, status, err.Error())
}
