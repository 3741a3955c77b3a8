package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/internal/ledger"
	"github.com/VIDUSHH/kindnesshome-backend/internal/metrics"
	"github.com/VIDUSHH/kindnesshome-backend/internal/repository"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/id"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/receipt"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

// CreateDonationRequest is a direct organization donation (not tied to
// a campaign's settlement path). It starts pending and completes when
// the processor confirms payment.
type CreateDonationRequest struct {
	UserID            string
	OrganizationID    string
	Amount            decimal.Decimal
	Currency          string
	PaymentMethod     domain.PaymentMethodType
	CoverFees         bool
	IsRecurring       bool
	RecurringInterval *domain.RecurringInterval
	IsAnonymous       bool
	DonorMessage      string

	MatchingGiftEligible bool
	DedicationType       *domain.DedicationType
	DedicationName       string
}

// Receipt is the tax receipt rendered for a completed donation.
type Receipt struct {
	ReceiptNumber string               `json:"receipt_number"`
	Donation      *domain.Donation     `json:"donation"`
	DonorName     string               `json:"donor_name"`
	DonorEmail    string               `json:"donor_email"`
	Organization  *domain.Organization `json:"organization"`
	TaxDeductible bool                 `json:"tax_deductible"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

// DonationUsecase handles organization donations, payment confirmation
// outcomes, and tax receipts.
type DonationUsecase struct {
	donations repository.DonationRepository
	orgs      repository.OrganizationRepository
	users     repository.UserRepository
	txm       repository.TxManager
	receipts  *receipt.Generator
	events    DonationEvents
	logger    *zap.Logger
}

func NewDonationUsecase(
	donations repository.DonationRepository,
	orgs repository.OrganizationRepository,
	users repository.UserRepository,
	txm repository.TxManager,
	receipts *receipt.Generator,
	events DonationEvents,
	logger *zap.Logger,
) *DonationUsecase {
	return &DonationUsecase{
		donations: donations,
		orgs:      orgs,
		users:     users,
		txm:       txm,
		receipts:  receipts,
		events:    events,
		logger:    logger,
	}
}

// Create records a pending organization donation with its fee
// breakdown. Processor integration happens elsewhere; Confirm or
// Cancel records the outcome.
func (u *DonationUsecase) Create(ctx context.Context, req CreateDonationRequest) (*domain.Donation, error) {
	fees, err := ledger.ComputeFees(req.Amount, req.CoverFees)
	if err != nil {
		return nil, err
	}

	org, err := u.orgs.GetByID(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !org.IsActive {
		return nil, xerrors.ErrOrganizationInactive
	}

	if req.Currency == "" {
		req.Currency = "USD"
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.MethodStripe
	}
	if req.IsRecurring && req.RecurringInterval == nil {
		monthly := domain.IntervalMonthly
		req.RecurringInterval = &monthly
	}

	d := &domain.Donation{
		ID:                   id.GenerateUUID("don"),
		UserID:               &req.UserID,
		OrganizationID:       req.OrganizationID,
		Amount:               req.Amount,
		Currency:             req.Currency,
		PaymentMethod:        req.PaymentMethod,
		PaymentProcessorID:   uuid.NewString(),
		PaymentStatus:        domain.PaymentPending,
		TransactionFee:       fees.TransactionFee,
		PlatformFee:          fees.PlatformFee,
		NetAmount:            fees.NetAmount,
		IsRecurring:          req.IsRecurring,
		RecurringInterval:    req.RecurringInterval,
		IsAnonymous:          req.IsAnonymous,
		DonorMessage:         req.DonorMessage,
		DedicationType:       req.DedicationType,
		DedicationName:       req.DedicationName,
		MatchingGiftEligible: req.MatchingGiftEligible,
	}

	if err := u.donations.Create(ctx, nil, d); err != nil {
		return nil, err
	}

	u.logger.Info("donation created",
		zap.String("donation_id", d.ID),
		zap.String("organization_id", d.OrganizationID),
		zap.String("amount", d.Amount.String()),
	)
	return d, nil
}

// BulkDonationItem is one record in a donation history import.
type BulkDonationItem struct {
	UserID         string                   `json:"user_id"`
	OrganizationID string                   `json:"organization_id"`
	Amount         decimal.Decimal          `json:"amount"`
	PaymentMethod  domain.PaymentMethodType `json:"payment_method"`
	CoverFees      bool                     `json:"cover_fees"`
	IsAnonymous    bool                     `json:"is_anonymous"`
}

// BulkImport records a batch of already-settled donations, typically
// history migrated from another platform. The whole batch commits or
// none of it does.
func (u *DonationUsecase) BulkImport(ctx context.Context, items []BulkDonationItem) ([]*domain.Donation, error) {
	if len(items) == 0 {
		return nil, xerrors.ErrInvalidInput
	}

	created := make([]*domain.Donation, 0, len(items))
	for _, item := range items {
		if item.UserID == "" || item.OrganizationID == "" {
			return nil, xerrors.ErrInvalidInput
		}
		fees, err := ledger.ComputeFees(item.Amount, item.CoverFees)
		if err != nil {
			return nil, err
		}

		method := item.PaymentMethod
		if method == "" {
			method = domain.MethodBulkImport
		}
		donorID := item.UserID

		created = append(created, &domain.Donation{
			ID:                 id.GenerateUUID("don"),
			UserID:             &donorID,
			OrganizationID:     item.OrganizationID,
			Amount:             item.Amount,
			Currency:           "USD",
			PaymentMethod:      method,
			PaymentProcessorID: uuid.NewString(),
			PaymentStatus:      domain.PaymentCompleted,
			TransactionFee:     fees.TransactionFee,
			PlatformFee:        fees.PlatformFee,
			NetAmount:          fees.NetAmount,
			IsAnonymous:        item.IsAnonymous,
		})
	}

	err := u.txm.WithSerializable(ctx, func(tx pgx.Tx) error {
		for _, d := range created {
			if err := u.donations.Create(ctx, tx, d); err != nil {
				return fmt.Errorf("%w: insert donation: %v", xerrors.ErrPersistence, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("donations imported", zap.Int("count", len(created)))
	return created, nil
}

// Confirm records the processor's success outcome for a pending
// organization donation. Campaign donations settle synchronously and
// are never pending, so they are rejected here.
func (u *DonationUsecase) Confirm(ctx context.Context, donationID, userID string) (*domain.Donation, error) {
	d, err := u.ownedDonation(ctx, donationID, userID)
	if err != nil {
		return nil, err
	}
	if d.PaymentStatus != domain.PaymentPending {
		return nil, xerrors.ErrDonationNotPending
	}
	if d.CampaignID != nil {
		return nil, xerrors.ErrInvalidRequest
	}

	if err := u.donations.UpdatePaymentStatus(ctx, d.ID, domain.PaymentCompleted); err != nil {
		return nil, err
	}
	d.PaymentStatus = domain.PaymentCompleted

	if u.events != nil {
		if err := u.events.PublishDonationCompleted(ctx, d); err != nil {
			u.logger.Warn("publish donation.completed failed", zap.Error(err))
		}
	}

	u.logger.Info("donation confirmed", zap.String("donation_id", d.ID))
	return d, nil
}

// Cancel cancels a pending donation, or an active recurring one.
func (u *DonationUsecase) Cancel(ctx context.Context, donationID, userID string) (*domain.Donation, error) {
	d, err := u.ownedDonation(ctx, donationID, userID)
	if err != nil {
		return nil, err
	}
	if d.PaymentStatus == domain.PaymentCancelled {
		return nil, xerrors.ErrInvalidTransition
	}
	// Once payment completes only the recurring schedule is left to
	// cancel; a settled one-off has nothing to stop.
	if d.PaymentStatus != domain.PaymentPending && !d.IsRecurring {
		return nil, xerrors.ErrNotRecurring
	}

	if err := u.donations.UpdatePaymentStatus(ctx, d.ID, domain.PaymentCancelled); err != nil {
		return nil, err
	}
	d.PaymentStatus = domain.PaymentCancelled

	u.logger.Info("donation cancelled", zap.String("donation_id", d.ID))
	return d, nil
}

func (u *DonationUsecase) Get(ctx context.Context, donationID, userID string) (*domain.Donation, error) {
	return u.ownedDonation(ctx, donationID, userID)
}

// GetReceipt renders the tax receipt for a completed donation. The
// receipt number is derived from the donation ID, so re-issuing never
// mints a new number.
func (u *DonationUsecase) GetReceipt(ctx context.Context, donationID, userID string) (*Receipt, error) {
	d, err := u.ownedDonation(ctx, donationID, userID)
	if err != nil {
		return nil, err
	}
	if d.PaymentStatus != domain.PaymentCompleted {
		return nil, xerrors.ErrReceiptNotAvailable
	}

	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	org, err := u.orgs.GetByID(ctx, d.OrganizationID)
	if err != nil {
		return nil, err
	}

	number := d.TaxReceiptNumber
	if number == "" {
		number = u.receipts.ForDonation(d.ID)
	}

	if !d.TaxReceiptSent {
		if err := u.donations.MarkReceiptSent(ctx, d.ID, number); err != nil {
			return nil, err
		}
		d.TaxReceiptSent = true
		d.TaxReceiptNumber = number
		metrics.ReceiptsIssued.Inc()

		if u.events != nil {
			if err := u.events.PublishReceiptIssued(ctx, d, number); err != nil {
				u.logger.Warn("publish receipt.issued failed", zap.Error(err))
			}
		}
	}

	return &Receipt{
		ReceiptNumber: number,
		Donation:      d,
		DonorName:     user.FullName(),
		DonorEmail:    user.Email,
		Organization:  org,
		TaxDeductible: org.TaxDeductible(),
		GeneratedAt:   time.Now(),
	}, nil
}

func (u *DonationUsecase) ownedDonation(ctx context.Context, donationID, userID string) (*domain.Donation, error) {
	d, err := u.donations.GetByID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if d.UserID == nil || *d.UserID != userID {
		return nil, xerrors.ErrDonationNotFound
	}
	return d, nil
}
