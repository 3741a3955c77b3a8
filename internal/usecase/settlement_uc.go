package usecase

import (
	"context"
	"errors"
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
	"github.com/VIDUSHH/kindnesshome-backend/pkg/cache"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/id"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/livefeed"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

// DonationEvents publishes donation lifecycle events after commit.
type DonationEvents interface {
	PublishDonationCompleted(ctx context.Context, d *domain.Donation) error
	PublishDonationMatched(ctx context.Context, d *domain.Donation) error
	PublishReceiptIssued(ctx context.Context, d *domain.Donation, receiptNumber string) error
}

// DonateRequest is a validated campaign donation, supplied by the
// request layer with the caller already authenticated.
type DonateRequest struct {
	CampaignID    string
	UserID        string
	DonorName     string // display name for the live feed; ignored when anonymous
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod domain.PaymentMethodType
	CoverFees     bool
	IsAnonymous   bool
	DonorMessage  string

	MatchingGiftEligible bool
	DedicationType       *domain.DedicationType
	DedicationName       string
}

// SettlementResult is the committed outcome: the donor's donation, the
// platform matching donation when the pool paid out, and the updated
// campaign snapshot.
type SettlementResult struct {
	Donation         *domain.Donation `json:"donation"`
	MatchingDonation *domain.Donation `json:"matching_donation,omitempty"`
	Campaign         *domain.Campaign `json:"campaign"`
}

// SettlementUsecase applies donations to campaigns atomically. It holds
// no state of its own; all concurrency control is the campaign row lock
// taken inside the serializable transaction.
type SettlementUsecase struct {
	campaigns repository.CampaignRepository
	donations repository.DonationRepository
	txm       repository.TxManager
	events    DonationEvents
	feed      *livefeed.Manager
	cache     *cache.CacheService
	logger    *zap.Logger
	now       func() time.Time
}

func NewSettlementUsecase(
	campaigns repository.CampaignRepository,
	donations repository.DonationRepository,
	txm repository.TxManager,
	events DonationEvents,
	feed *livefeed.Manager,
	cacheSvc *cache.CacheService,
	logger *zap.Logger,
) *SettlementUsecase {
	return &SettlementUsecase{
		campaigns: campaigns,
		donations: donations,
		txm:       txm,
		events:    events,
		feed:      feed,
		cache:     cacheSvc,
		logger:    logger,
		now:       time.Now,
	}
}

// Settle applies one donation to a campaign. Steps:
//
//  1. Validate the amount and compute fees (pure, before any write).
//  2. Inside one serializable transaction: lock the campaign row,
//     check it is active, apply the donation and any matching payout,
//     insert the donation row(s), write the new totals.
//  3. On commit, emit events, push the live feed, invalidate caches.
//
// Any failure inside the transaction rolls everything back; validation
// failures surface as their own sentinels, everything else as
// ErrPersistence.
func (u *SettlementUsecase) Settle(ctx context.Context, req DonateRequest) (*SettlementResult, error) {
	start := u.now()

	fees, err := ledger.ComputeFees(req.Amount, req.CoverFees)
	if err != nil {
		metrics.SettlementFailures.WithLabelValues("invalid_amount").Inc()
		return nil, err
	}

	if req.Currency == "" {
		req.Currency = "USD"
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.MethodStripe
	}

	var result SettlementResult

	err = u.txm.WithSerializable(ctx, func(tx pgx.Tx) error {
		campaign, err := u.campaigns.GetForUpdate(ctx, tx, req.CampaignID)
		if err != nil {
			return err
		}
		if !campaign.IsActive(u.now()) {
			return xerrors.ErrCampaignNotActive
		}

		settlement := ledger.SettleDonation(campaign, req.Amount)

		var donorID *string
		if req.UserID != "" {
			donorID = &req.UserID
		}

		donation := &domain.Donation{
			ID:                   id.GenerateUUID("don"),
			UserID:               donorID,
			OrganizationID:       campaign.OrganizationID,
			CampaignID:           &campaign.ID,
			Amount:               req.Amount,
			Currency:             req.Currency,
			PaymentMethod:        req.PaymentMethod,
			PaymentProcessorID:   uuid.NewString(),
			PaymentStatus:        domain.PaymentCompleted,
			TransactionFee:       fees.TransactionFee,
			PlatformFee:          fees.PlatformFee,
			NetAmount:            fees.NetAmount,
			IsAnonymous:          req.IsAnonymous,
			DonorMessage:         req.DonorMessage,
			DedicationType:       req.DedicationType,
			DedicationName:       req.DedicationName,
			MatchingGiftEligible: req.MatchingGiftEligible,
		}
		if err := u.donations.Create(ctx, tx, donation); err != nil {
			return err
		}

		var matchDonation *domain.Donation
		if settlement.MatchAmount.IsPositive() {
			zero := ledger.ZeroFees(settlement.MatchAmount)
			matchDonation = &domain.Donation{
				ID:                 id.GenerateUUID("don"),
				UserID:             nil, // attributed to the platform, not a payer
				OrganizationID:     campaign.OrganizationID,
				CampaignID:         &campaign.ID,
				Amount:             settlement.MatchAmount,
				Currency:           req.Currency,
				PaymentMethod:      domain.MethodPlatformMatching,
				PaymentProcessorID: fmt.Sprintf("match_%s_%s", campaign.ID, donation.ID),
				PaymentStatus:      domain.PaymentCompleted,
				TransactionFee:     zero.TransactionFee,
				PlatformFee:        zero.PlatformFee,
				NetAmount:          zero.NetAmount,
				IsAnonymous:        true,
				DonorMessage:       "Platform matching donation",
			}
			if err := u.donations.Create(ctx, tx, matchDonation); err != nil {
				return err
			}
		}

		if err := u.campaigns.ApplySettlement(ctx, tx,
			campaign.ID, settlement.RaisedAmount, settlement.MatchingPool); err != nil {
			return err
		}

		campaign.RaisedAmount = settlement.RaisedAmount
		campaign.MatchingPool = settlement.MatchingPool

		result = SettlementResult{
			Donation:         donation,
			MatchingDonation: matchDonation,
			Campaign:         campaign,
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrCampaignNotFound):
			metrics.SettlementFailures.WithLabelValues("campaign_not_found").Inc()
			return nil, err
		case errors.Is(err, xerrors.ErrCampaignNotActive):
			metrics.SettlementFailures.WithLabelValues("campaign_not_active").Inc()
			return nil, err
		default:
			metrics.SettlementFailures.WithLabelValues("persistence").Inc()
			u.logger.Error("settlement rolled back",
				zap.String("campaign_id", req.CampaignID),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %v", xerrors.ErrPersistence, err)
		}
	}

	u.afterCommit(ctx, req, &result)

	matched := "false"
	if result.MatchingDonation != nil {
		matched = "true"
		amt, _ := result.MatchingDonation.Amount.Float64()
		metrics.MatchedDollars.Add(amt)
	}
	metrics.DonationsSettled.WithLabelValues(matched).Inc()
	metrics.SettlementDuration.Observe(u.now().Sub(start).Seconds())

	u.logger.Info("donation settled",
		zap.String("campaign_id", req.CampaignID),
		zap.String("donation_id", result.Donation.ID),
		zap.String("amount", req.Amount.String()),
		zap.Bool("matched", result.MatchingDonation != nil),
	)
	return &result, nil
}

// afterCommit fans out the committed settlement: kafka events, live
// feed, cache invalidation. All best-effort; the settlement already
// succeeded.
func (u *SettlementUsecase) afterCommit(ctx context.Context, req DonateRequest, res *SettlementResult) {
	if u.events != nil {
		if err := u.events.PublishDonationCompleted(ctx, res.Donation); err != nil {
			u.logger.Warn("publish donation.completed failed", zap.Error(err))
		}
		if res.MatchingDonation != nil {
			if err := u.events.PublishDonationMatched(ctx, res.MatchingDonation); err != nil {
				u.logger.Warn("publish donation.matched failed", zap.Error(err))
			}
		}
	}

	if u.feed != nil {
		donorName := ""
		if !req.IsAnonymous {
			donorName = req.DonorName
		}
		u.feed.Publish(livefeed.Event{
			Type:       pubEventType(res.MatchingDonation != nil),
			CampaignID: res.Campaign.ID,
			DonationID: res.Donation.ID,
			Amount:     res.Donation.Amount.String(),
			Currency:   res.Donation.Currency,
			DonorName:  donorName,
			Message:    req.DonorMessage,
			Raised:     res.Campaign.RaisedAmount.String(),
			Progress:   res.Campaign.Progress().String(),
			At:         u.now(),
		})
	}

	if u.cache != nil {
		if err := u.cache.Delete(ctx, cache.AnalyticsKey(res.Campaign.ID), cache.FeaturedKey()); err != nil {
			u.logger.Warn("cache invalidation failed", zap.Error(err))
		}
	}
}

func pubEventType(matched bool) string {
	if matched {
		return "donation.matched"
	}
	return "donation.completed"
}
