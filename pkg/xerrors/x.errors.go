package xerrors

import "errors"
import "github.com/jackc/pgx/v5/pgconn"

func ParsePGErrorCode(err error) string {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input provided")
	ErrAlreadyExists  = errors.New("already exists")
)

// Ledger / settlement
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrCampaignNotActive = errors.New("campaign is not active")
	ErrPersistence       = errors.New("persistence failure")
)

// Donations / matching gifts
var (
	ErrDonationNotFound     = errors.New("donation not found")
	ErrDonationNotPending   = errors.New("donation is not pending")
	ErrDonationNotCompleted = errors.New("donation is not completed")
	ErrNotMatchingEligible  = errors.New("donation is not eligible for matching gifts")
	ErrMatchingGiftExists   = errors.New("matching gift already submitted for this donation")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrNotRecurring         = errors.New("donation is not recurring")
	ErrReceiptNotAvailable  = errors.New("receipt only available for completed donations")
)

// Campaigns
var (
	ErrCampaignHasDonations = errors.New("campaign has donations and cannot be deleted")
	ErrInvalidDateWindow    = errors.New("end date must be after start date")
)

// Organizations
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrOrganizationInactive = errors.New("organization is not active")
	ErrInvalidEIN           = errors.New("invalid EIN")
	ErrEINNotRecognized     = errors.New("EIN not found in IRS records")
	ErrEINAlreadyRegistered = errors.New("organization with this EIN already exists")
)

// Registration / Login
var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyInUse  = errors.New("email already in use")
	ErrEmailRequired      = errors.New("email required")
	ErrPasswordRequired   = errors.New("password required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
)

// Social auth
var (
	ErrSocialAccountOnly = errors.New("social account only")
	ErrProviderNotLinked = errors.New("provider not linked")
	ErrProviderLinked    = errors.New("provider already linked to another account")
	ErrLastAuthMethod    = errors.New("cannot unlink the only sign-in method")
)

// Token
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Payment methods
var (
	ErrPaymentMethodNotFound = errors.New("payment method not found")
)
