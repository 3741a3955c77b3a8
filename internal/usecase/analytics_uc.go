package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/internal/repository"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/cache"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

const analyticsTTL = time.Minute

// AnalyticsUsecase computes read-side campaign aggregations. Results
// are cached briefly and invalidated by settlement, so numbers lag a
// commit by at most the TTL.
type AnalyticsUsecase struct {
	campaigns repository.CampaignRepository
	donations repository.DonationRepository
	cache     *cache.CacheService
	logger    *zap.Logger
}

func NewAnalyticsUsecase(
	campaigns repository.CampaignRepository,
	donations repository.DonationRepository,
	cacheSvc *cache.CacheService,
	logger *zap.Logger,
) *AnalyticsUsecase {
	return &AnalyticsUsecase{
		campaigns: campaigns,
		donations: donations,
		cache:     cacheSvc,
		logger:    logger,
	}
}

// CampaignAnalytics aggregates a campaign's completed donations for its
// creator's dashboard.
func (u *AnalyticsUsecase) CampaignAnalytics(ctx context.Context, campaignID, requesterID string) (*domain.CampaignAnalytics, error) {
	c, err := u.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.CreatorID == nil || *c.CreatorID != requesterID {
		return nil, xerrors.ErrForbidden
	}

	key := cache.AnalyticsKey(campaignID)
	if u.cache != nil {
		var cached domain.CampaignAnalytics
		if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	a, err := u.donations.Analytics(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	a.GoalAmount = c.GoalAmount
	a.ProgressPercentage = c.Progress()

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, key, a, analyticsTTL); err != nil {
			u.logger.Warn("cache analytics failed", zap.Error(err))
		}
	}
	return a, nil
}

// CampaignDonations is the public donation list for a campaign page.
func (u *AnalyticsUsecase) CampaignDonations(ctx context.Context, campaignID string, limit, offset int) ([]*domain.Donation, error) {
	if _, err := u.campaigns.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return u.donations.ListByCampaign(ctx, campaignID, limit, offset)
}
