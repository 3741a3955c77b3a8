package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/internal/repository"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/id"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

var defaultMatchRatio = decimal.NewFromInt(1)

type CreateMatchingGiftRequest struct {
	DonationID    string
	UserID        string
	EmployerName  string
	EmployerEIN   string
	EmployeeEmail string
	MatchRatio    *decimal.Decimal // nil means 1:1
}

// MatchingGiftUsecase runs the employer matching-gift state machine.
// Approval, payment and denial are administrative inputs; this code
// only enforces the legal transitions and eligibility rules.
type MatchingGiftUsecase struct {
	gifts     repository.MatchingGiftRepository
	donations repository.DonationRepository
	logger    *zap.Logger
	now       func() time.Time
}

func NewMatchingGiftUsecase(
	gifts repository.MatchingGiftRepository,
	donations repository.DonationRepository,
	logger *zap.Logger,
) *MatchingGiftUsecase {
	return &MatchingGiftUsecase{
		gifts:     gifts,
		donations: donations,
		logger:    logger,
		now:       time.Now,
	}
}

// Create opens a matching-gift request for a completed, eligible
// donation and stamps the donation as submitted to the employer.
func (u *MatchingGiftUsecase) Create(ctx context.Context, req CreateMatchingGiftRequest) (*domain.MatchingGift, error) {
	d, err := u.donations.GetByID(ctx, req.DonationID)
	if err != nil {
		return nil, err
	}
	if d.UserID == nil || *d.UserID != req.UserID {
		return nil, xerrors.ErrDonationNotFound
	}
	if d.PaymentStatus != domain.PaymentCompleted {
		return nil, xerrors.ErrDonationNotCompleted
	}
	if !d.MatchingGiftEligible {
		return nil, xerrors.ErrNotMatchingEligible
	}

	exists, err := u.gifts.ExistsForDonation(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, xerrors.ErrMatchingGiftExists
	}

	ratio := defaultMatchRatio
	if req.MatchRatio != nil {
		if req.MatchRatio.LessThanOrEqual(decimal.Zero) {
			return nil, xerrors.ErrInvalidInput
		}
		ratio = *req.MatchRatio
	}
	matchAmount := d.Amount.Mul(ratio).Round(2)

	mg := &domain.MatchingGift{
		ID:            id.GenerateUUID("mg"),
		DonationID:    d.ID,
		EmployerName:  req.EmployerName,
		EmployerEIN:   req.EmployerEIN,
		EmployeeEmail: req.EmployeeEmail,
		MatchRatio:    ratio,
		MatchAmount:   matchAmount,
		Status:        domain.MatchPending,
	}
	if err := u.gifts.Create(ctx, mg); err != nil {
		return nil, err
	}

	if err := u.donations.SetMatchingGift(ctx, d.ID, domain.MatchSubmitted, matchAmount); err != nil {
		return nil, err
	}

	u.logger.Info("matching gift created",
		zap.String("matching_gift_id", mg.ID),
		zap.String("donation_id", d.ID),
		zap.String("match_amount", matchAmount.String()),
	)
	return mg, nil
}

// Transition moves a matching gift to the target status, recording the
// relevant timestamp. Illegal moves fail with ErrInvalidTransition.
func (u *MatchingGiftUsecase) Transition(ctx context.Context, giftID string, target domain.MatchingGiftStatus, notes string) (*domain.MatchingGift, error) {
	mg, err := u.gifts.GetByID(ctx, giftID)
	if err != nil {
		return nil, err
	}

	if !mg.Status.CanTransitionTo(target) {
		return nil, xerrors.ErrInvalidTransition
	}

	now := u.now()
	mg.Status = target
	switch target {
	case domain.MatchSubmitted:
		mg.SubmittedAt = &now
	case domain.MatchApproved:
		mg.ApprovedAt = &now
	case domain.MatchPaid:
		mg.PaidAt = &now
	}
	if notes != "" {
		mg.Notes = notes
	}

	if err := u.gifts.UpdateStatus(ctx, mg); err != nil {
		return nil, err
	}

	// keep the donation's summary column in step
	if err := u.donations.SetMatchingGift(ctx, mg.DonationID, target, mg.MatchAmount); err != nil {
		u.logger.Warn("sync donation matching status failed",
			zap.String("donation_id", mg.DonationID), zap.Error(err))
	}

	u.logger.Info("matching gift transitioned",
		zap.String("matching_gift_id", mg.ID),
		zap.String("status", string(target)),
	)
	return mg, nil
}
