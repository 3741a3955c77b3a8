package usecase

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/internal/repository"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/id"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

type UpdateProfileRequest struct {
	FirstName       *string `json:"first_name,omitempty"`
	LastName        *string `json:"last_name,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

type AddPaymentMethodRequest struct {
	MethodType  string `json:"method_type"`
	Provider    string `json:"provider"`
	ProviderRef string `json:"provider_ref"`
	LastFour    string `json:"last_four,omitempty"`
	Brand       string `json:"brand,omitempty"`
	ExpiryMonth int    `json:"expiry_month,omitempty"`
	ExpiryYear  int    `json:"expiry_year,omitempty"`
	IsDefault   bool   `json:"is_default"`
}

// TaxYearSummary lists a donor's completed donations for one tax year.
type TaxYearSummary struct {
	Year      int                `json:"year"`
	Total     decimal.Decimal    `json:"total"`
	Donations []*domain.Donation `json:"donations"`
}

type UserUsecase struct {
	users     repository.UserRepository
	donations repository.DonationRepository
	methods   repository.PaymentMethodRepository
	logger    *zap.Logger
}

func NewUserUsecase(
	users repository.UserRepository,
	donations repository.DonationRepository,
	methods repository.PaymentMethodRepository,
	logger *zap.Logger,
) *UserUsecase {
	return &UserUsecase{users: users, donations: donations, methods: methods, logger: logger}
}

func (u *UserUsecase) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.ProfileImageURL != nil {
		user.ProfileImageURL = *req.ProfileImageURL
	}

	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *UserUsecase) Donations(ctx context.Context, userID string, limit, offset int) ([]*domain.Donation, error) {
	return u.donations.ListByUser(ctx, userID, limit, offset)
}

func (u *UserUsecase) AddPaymentMethod(ctx context.Context, userID string, req AddPaymentMethodRequest) (*domain.PaymentMethod, error) {
	if req.MethodType == "" || req.Provider == "" || req.ProviderRef == "" {
		return nil, xerrors.ErrInvalidInput
	}

	pm := &domain.PaymentMethod{
		ID:          id.GenerateUUID("pm"),
		UserID:      userID,
		MethodType:  req.MethodType,
		Provider:    req.Provider,
		ProviderRef: req.ProviderRef,
		LastFour:    req.LastFour,
		Brand:       req.Brand,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		IsDefault:   req.IsDefault,
		IsActive:    true,
	}
	if err := u.methods.Create(ctx, pm); err != nil {
		return nil, err
	}

	if pm.IsDefault {
		if err := u.methods.SetDefault(ctx, userID, pm.ID); err != nil {
			u.logger.Warn("set default payment method failed", zap.Error(err))
		}
	}
	return pm, nil
}

func (u *UserUsecase) PaymentMethods(ctx context.Context, userID string) ([]*domain.PaymentMethod, error) {
	return u.methods.ListByUser(ctx, userID)
}

func (u *UserUsecase) SetDefaultPaymentMethod(ctx context.Context, userID, methodID string) error {
	return u.methods.SetDefault(ctx, userID, methodID)
}

func (u *UserUsecase) RemovePaymentMethod(ctx context.Context, userID, methodID string) error {
	return u.methods.Deactivate(ctx, userID, methodID)
}

func (u *UserUsecase) TaxReceipts(ctx context.Context, userID string, year int) (*TaxYearSummary, error) {
	donations, total, err := u.donations.YearlyCompleted(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	return &TaxYearSummary{Year: year, Total: total, Donations: donations}, nil
}
