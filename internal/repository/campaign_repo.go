package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

type CampaignFilter struct {
	Status   string
	Category string
	Search   string
	Page     int
	PerPage  int
}

type CampaignRepository interface {
	Create(ctx context.Context, c *domain.Campaign) error
	GetByID(ctx context.Context, id string) (*domain.Campaign, error)
	// GetForUpdate reads the campaign row with a row-level lock inside
	// the given transaction. Settlement must use this read.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Campaign, error)
	// ApplySettlement writes the running totals computed under the row
	// lock. Must be called with the same tx that took the lock.
	ApplySettlement(ctx context.Context, tx pgx.Tx, id string, raised, pool decimal.Decimal) error
	Update(ctx context.Context, c *domain.Campaign) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f CampaignFilter) ([]*domain.Campaign, int64, error)
	Featured(ctx context.Context, limit int) ([]*domain.Campaign, error)
	HasDonations(ctx context.Context, id string) (bool, error)
}

type campaignRepo struct {
	db *pgxpool.Pool
}

func NewCampaignRepo(db *pgxpool.Pool) CampaignRepository {
	return &campaignRepo{db: db}
}

const campaignColumns = `
	id, organization_id, creator_id, title, description, story,
	goal_amount, raised_amount, currency, category, tags,
	start_date, end_date, status, campaign_type,
	featured_image_url, gallery_images, video_url,
	matching_enabled, matching_pool, matching_ratio,
	allow_anonymous, created_at, updated_at`

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID, &c.OrganizationID, &c.CreatorID, &c.Title, &c.Description, &c.Story,
		&c.GoalAmount, &c.RaisedAmount, &c.Currency, &c.Category, &c.Tags,
		&c.StartDate, &c.EndDate, &c.Status, &c.CampaignType,
		&c.FeaturedImageURL, &c.GalleryImages, &c.VideoURL,
		&c.MatchingEnabled, &c.MatchingPool, &c.MatchingRatio,
		&c.AllowAnonymous, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *campaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO campaigns (
			id, organization_id, creator_id, title, description, story,
			goal_amount, raised_amount, currency, category, tags,
			start_date, end_date, status, campaign_type,
			featured_image_url, gallery_images, video_url,
			matching_enabled, matching_pool, matching_ratio,
			allow_anonymous, created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,
			$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24
		)`,
		c.ID, c.OrganizationID, c.CreatorID, c.Title, c.Description, c.Story,
		c.GoalAmount, c.RaisedAmount, c.Currency, c.Category, c.Tags,
		c.StartDate, c.EndDate, c.Status, c.CampaignType,
		c.FeaturedImageURL, c.GalleryImages, c.VideoURL,
		c.MatchingEnabled, c.MatchingPool, c.MatchingRatio,
		c.AllowAnonymous, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func (r *campaignRepo) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	c, err := scanCampaign(r.db.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, xerrors.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (r *campaignRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Campaign, error) {
	c, err := scanCampaign(tx.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, xerrors.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("lock campaign: %w", err)
	}
	return c, nil
}

func (r *campaignRepo) ApplySettlement(ctx context.Context, tx pgx.Tx, id string, raised, pool decimal.Decimal) error {
	tag, err := tx.Exec(ctx, `
		UPDATE campaigns
		SET raised_amount = $2, matching_pool = $3, updated_at = $4
		WHERE id = $1`,
		id, raised, pool, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("apply settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrCampaignNotFound
	}
	return nil
}

func (r *campaignRepo) Update(ctx context.Context, c *domain.Campaign) error {
	c.UpdatedAt = time.Now()

	tag, err := r.db.Exec(ctx, `
		UPDATE campaigns SET
			title = $2, description = $3, story = $4, goal_amount = $5,
			currency = $6, category = $7, tags = $8,
			start_date = $9, end_date = $10, status = $11, campaign_type = $12,
			featured_image_url = $13, gallery_images = $14, video_url = $15,
			matching_enabled = $16, matching_pool = $17, matching_ratio = $18,
			allow_anonymous = $19, updated_at = $20
		WHERE id = $1`,
		c.ID, c.Title, c.Description, c.Story, c.GoalAmount,
		c.Currency, c.Category, c.Tags,
		c.StartDate, c.EndDate, c.Status, c.CampaignType,
		c.FeaturedImageURL, c.GalleryImages, c.VideoURL,
		c.MatchingEnabled, c.MatchingPool, c.MatchingRatio,
		c.AllowAnonymous, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrCampaignNotFound
	}
	return nil
}

func (r *campaignRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrCampaignNotFound
	}
	return nil
}

func (r *campaignRepo) List(ctx context.Context, f CampaignFilter) ([]*domain.Campaign, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}

	where := ` WHERE 1=1`
	args := []any{}
	n := 0

	if f.Status != "" {
		n++
		where += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, f.Status)
	}
	if f.Category != "" {
		n++
		where += fmt.Sprintf(" AND category = $%d", n)
		args = append(args, f.Category)
	}
	if f.Search != "" {
		n++
		where += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", n, n)
		args = append(args, "%"+f.Search+"%")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM campaigns`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []*domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Featured lists active campaigns by raised amount, highest first.
func (r *campaignRepo) Featured(ctx context.Context, limit int) ([]*domain.Campaign, error) {
	if limit < 1 || limit > 50 {
		limit = 6
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+campaignColumns+` FROM campaigns
		 WHERE status = 'active'
		 ORDER BY raised_amount DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("featured campaigns: %w", err)
	}
	defer rows.Close()

	var out []*domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *campaignRepo) HasDonations(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM donations WHERE campaign_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check campaign donations: %w", err)
	}
	return exists, nil
}
