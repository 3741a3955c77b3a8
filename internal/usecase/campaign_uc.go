package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/internal/repository"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/cache"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/id"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

const featuredTTL = 2 * time.Minute

type CreateCampaignRequest struct {
	OrganizationID   string
	CreatorID        string
	Title            string
	Description      string
	Story            string
	GoalAmount       decimal.Decimal
	Currency         string
	Category         string
	Tags             []string
	StartDate        *time.Time
	EndDate          *time.Time
	Status           domain.CampaignStatus
	CampaignType     domain.CampaignType
	FeaturedImageURL string
	GalleryImages    []string
	VideoURL         string
	MatchingEnabled  bool
	MatchingPool     decimal.Decimal
	MatchingRatio    decimal.Decimal
	AllowAnonymous   *bool
}

type CampaignUsecase struct {
	campaigns repository.CampaignRepository
	updates   repository.CampaignUpdateRepository
	orgs      repository.OrganizationRepository
	cache     *cache.CacheService
	logger    *zap.Logger
}

func NewCampaignUsecase(
	campaigns repository.CampaignRepository,
	updates repository.CampaignUpdateRepository,
	orgs repository.OrganizationRepository,
	cacheSvc *cache.CacheService,
	logger *zap.Logger,
) *CampaignUsecase {
	return &CampaignUsecase{
		campaigns: campaigns,
		updates:   updates,
		orgs:      orgs,
		cache:     cacheSvc,
		logger:    logger,
	}
}

func (u *CampaignUsecase) Create(ctx context.Context, req CreateCampaignRequest) (*domain.Campaign, error) {
	if req.Title == "" || req.Description == "" {
		return nil, xerrors.ErrInvalidInput
	}

	org, err := u.orgs.GetByID(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !org.IsActive {
		return nil, xerrors.ErrOrganizationInactive
	}

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, xerrors.ErrInvalidDateWindow
	}
	if req.GoalAmount.IsNegative() || req.MatchingPool.IsNegative() {
		return nil, xerrors.ErrInvalidAmount
	}

	if req.Currency == "" {
		req.Currency = "USD"
	}
	if req.Status == "" {
		req.Status = domain.CampaignDraft
	}
	if req.CampaignType == "" {
		req.CampaignType = domain.CampaignGeneral
	}
	ratio := req.MatchingRatio
	if ratio.IsZero() {
		ratio = decimal.NewFromInt(1)
	}
	allowAnonymous := true
	if req.AllowAnonymous != nil {
		allowAnonymous = *req.AllowAnonymous
	}

	c := &domain.Campaign{
		ID:               id.GenerateUUID("camp"),
		OrganizationID:   req.OrganizationID,
		CreatorID:        &req.CreatorID,
		Title:            req.Title,
		Description:      req.Description,
		Story:            req.Story,
		GoalAmount:       req.GoalAmount,
		RaisedAmount:     decimal.Zero,
		Currency:         req.Currency,
		Category:         req.Category,
		Tags:             req.Tags,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Status:           req.Status,
		CampaignType:     req.CampaignType,
		FeaturedImageURL: req.FeaturedImageURL,
		GalleryImages:    req.GalleryImages,
		VideoURL:         req.VideoURL,
		MatchingEnabled:  req.MatchingEnabled,
		MatchingPool:     req.MatchingPool,
		MatchingRatio:    ratio,
		AllowAnonymous:   allowAnonymous,
	}

	if err := u.campaigns.Create(ctx, c); err != nil {
		return nil, err
	}

	u.logger.Info("campaign created",
		zap.String("campaign_id", c.ID),
		zap.String("organization_id", c.OrganizationID),
	)
	return c, nil
}

func (u *CampaignUsecase) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	return u.campaigns.GetByID(ctx, id)
}

func (u *CampaignUsecase) List(ctx context.Context, f repository.CampaignFilter) ([]*domain.Campaign, int64, error) {
	return u.campaigns.List(ctx, f)
}

// Update edits campaign metadata. Only the creator may edit; running
// totals are settlement-owned and never touched here.
func (u *CampaignUsecase) Update(ctx context.Context, campaignID, requesterID string, apply func(*domain.Campaign) error) (*domain.Campaign, error) {
	c, err := u.ownedCampaign(ctx, campaignID, requesterID)
	if err != nil {
		return nil, err
	}

	raised := c.RaisedAmount
	if err := apply(c); err != nil {
		return nil, err
	}
	c.RaisedAmount = raised

	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		return nil, xerrors.ErrInvalidDateWindow
	}

	if err := u.campaigns.Update(ctx, c); err != nil {
		return nil, err
	}

	u.invalidateFeatured(ctx)
	return c, nil
}

// Delete removes a campaign that has not received donations.
func (u *CampaignUsecase) Delete(ctx context.Context, campaignID, requesterID string) error {
	if _, err := u.ownedCampaign(ctx, campaignID, requesterID); err != nil {
		return err
	}

	has, err := u.campaigns.HasDonations(ctx, campaignID)
	if err != nil {
		return err
	}
	if has {
		return xerrors.ErrCampaignHasDonations
	}

	if err := u.campaigns.Delete(ctx, campaignID); err != nil {
		return err
	}
	u.invalidateFeatured(ctx)
	return nil
}

// Featured lists the highest-raising active campaigns, cached briefly.
func (u *CampaignUsecase) Featured(ctx context.Context, limit int) ([]*domain.Campaign, error) {
	var cached []*domain.Campaign
	if u.cache != nil {
		if hit, err := u.cache.GetJSON(ctx, cache.FeaturedKey(), &cached); err == nil && hit {
			return cached, nil
		}
	}

	out, err := u.campaigns.Featured(ctx, limit)
	if err != nil {
		return nil, err
	}

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, cache.FeaturedKey(), out, featuredTTL); err != nil {
			u.logger.Warn("cache featured campaigns failed", zap.Error(err))
		}
	}
	return out, nil
}

func (u *CampaignUsecase) AddUpdate(ctx context.Context, campaignID, requesterID, title, content, imageURL string) (*domain.CampaignUpdate, error) {
	if title == "" || content == "" {
		return nil, xerrors.ErrInvalidInput
	}
	if _, err := u.ownedCampaign(ctx, campaignID, requesterID); err != nil {
		return nil, err
	}

	upd := &domain.CampaignUpdate{
		ID:         id.GenerateUUID("cu"),
		CampaignID: campaignID,
		Title:      title,
		Content:    content,
		ImageURL:   imageURL,
	}
	if err := u.updates.Create(ctx, upd); err != nil {
		return nil, err
	}
	return upd, nil
}

func (u *CampaignUsecase) ListUpdates(ctx context.Context, campaignID string) ([]*domain.CampaignUpdate, error) {
	if _, err := u.campaigns.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return u.updates.ListByCampaign(ctx, campaignID)
}

func (u *CampaignUsecase) ownedCampaign(ctx context.Context, campaignID, requesterID string) (*domain.Campaign, error) {
	c, err := u.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.CreatorID == nil || *c.CreatorID != requesterID {
		return nil, xerrors.ErrForbidden
	}
	return c, nil
}

func (u *CampaignUsecase) invalidateFeatured(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Delete(ctx, cache.FeaturedKey()); err != nil {
		u.logger.Warn("invalidate featured cache failed", zap.Error(err))
	}
}
