package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/internal/repository"
	"github.com/VIDUSHH/kindnesshome-backend/internal/service/irs"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/cache"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/id"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

const orgSearchTTL = 5 * time.Minute

type OrganizationSearchRequest struct {
	Query    string `json:"query"`
	State    string `json:"state,omitempty"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type OrganizationUsecase struct {
	orgs   repository.OrganizationRepository
	irs    *irs.Service
	cache  *cache.CacheService
	logger *zap.Logger
}

func NewOrganizationUsecase(
	orgs repository.OrganizationRepository,
	irsSvc *irs.Service,
	c *cache.CacheService,
	logger *zap.Logger,
) *OrganizationUsecase {
	return &OrganizationUsecase{orgs: orgs, irs: irsSvc, cache: c, logger: logger}
}

func (u *OrganizationUsecase) List(ctx context.Context, limit, offset int) ([]*domain.Organization, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return u.orgs.List(ctx, limit, offset)
}

func (u *OrganizationUsecase) Get(ctx context.Context, orgID string) (*domain.Organization, error) {
	return u.orgs.GetByID(ctx, orgID)
}

// Search looks up charities locally first, then falls through to the
// IRS dataset when the query looks like an EIN. An IRS hit that is not
// yet in the directory is registered as a verified organization.
func (u *OrganizationUsecase) Search(ctx context.Context, req OrganizationSearchRequest) ([]*domain.Organization, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Limit <= 0 || req.Limit > 50 {
		req.Limit = 20
	}

	cacheKey := cache.OrgSearchKey(req.Query + "|" + req.State + "|" + req.Category)
	var cached []*domain.Organization
	if hit, err := u.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	results, err := u.orgs.Search(ctx, req.Query, req.State, req.Category, req.Limit)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		if org := u.lookupByEIN(ctx, req.Query); org != nil {
			results = append(results, org)
		}
	}

	if err := u.cache.SetJSON(ctx, cacheKey, results, orgSearchTTL); err != nil {
		u.logger.Warn("org search cache write failed", zap.Error(err))
	}
	return results, nil
}

// lookupByEIN resolves an EIN-shaped query against the IRS dataset and
// registers the charity on a hit. Non-EIN queries and misses return nil.
func (u *OrganizationUsecase) lookupByEIN(ctx context.Context, query string) *domain.Organization {
	ein, err := irs.NormalizeEIN(query)
	if err != nil {
		return nil
	}

	if org, err := u.orgs.GetByEIN(ctx, ein); err == nil {
		return org
	}

	v, err := u.irs.Verify(ein)
	if err != nil {
		return nil
	}

	now := time.Now()
	org := &domain.Organization{
		ID:                  id.GenerateUUID("org"),
		EIN:                 v.Record.EIN,
		Name:                v.Record.Name,
		City:                v.Record.City,
		State:               v.Record.State,
		NTEECode:            v.Record.NTEECode,
		Category:            v.Category,
		TaxExemptStatus:     v.Record.TaxExemptStatus,
		DeductibilityStatus: v.DeductibilityStatus,
		VerificationStatus:  domain.VerificationVerified,
		VerifiedAt:          &now,
		IsActive:            true,
	}
	if err := u.orgs.Create(ctx, org); err != nil {
		if errors.Is(err, xerrors.ErrEINAlreadyRegistered) {
			if existing, gerr := u.orgs.GetByEIN(ctx, org.EIN); gerr == nil {
				return existing
			}
		}
		u.logger.Warn("register irs charity failed", zap.String("ein", org.EIN), zap.Error(err))
		return nil
	}

	u.logger.Info("charity registered from irs lookup",
		zap.String("org_id", org.ID), zap.String("ein", org.EIN))
	return org
}

// Verify checks an EIN against the IRS dataset and stamps the local
// record verified when one exists for that EIN.
func (u *OrganizationUsecase) Verify(ctx context.Context, ein string) (*irs.Verification, error) {
	v, err := u.irs.Verify(ein)
	if err != nil {
		return nil, err
	}

	org, err := u.orgs.GetByEIN(ctx, v.Record.EIN)
	if err != nil {
		if errors.Is(err, xerrors.ErrOrganizationNotFound) {
			return v, nil
		}
		return nil, err
	}

	now := time.Now()
	org.NTEECode = v.Record.NTEECode
	org.Category = v.Category
	org.TaxExemptStatus = v.Record.TaxExemptStatus
	org.DeductibilityStatus = v.DeductibilityStatus
	org.VerificationStatus = domain.VerificationVerified
	org.VerifiedAt = &now
	if err := u.orgs.MarkVerified(ctx, org); err != nil {
		return nil, err
	}
	return v, nil
}

func (u *OrganizationUsecase) Categories() []irs.Category {
	return u.irs.Categories()
}
