package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
)

type CampaignUpdateRepository interface {
	Create(ctx context.Context, u *domain.CampaignUpdate) error
	ListByCampaign(ctx context.Context, campaignID string) ([]*domain.CampaignUpdate, error)
}

type campaignUpdateRepo struct {
	db *pgxpool.Pool
}

func NewCampaignUpdateRepo(db *pgxpool.Pool) CampaignUpdateRepository {
	return &campaignUpdateRepo{db: db}
}

func (r *campaignUpdateRepo) Create(ctx context.Context, u *domain.CampaignUpdate) error {
	u.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO campaign_updates (id, campaign_id, title, content, image_url, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.CampaignID, u.Title, u.Content, u.ImageURL, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert campaign update: %w", err)
	}
	return nil
}

func (r *campaignUpdateRepo) ListByCampaign(ctx context.Context, campaignID string) ([]*domain.CampaignUpdate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, campaign_id, title, content, image_url, created_at
		FROM campaign_updates
		WHERE campaign_id = $1
		ORDER BY created_at DESC`,
		campaignID)
	if err != nil {
		return nil, fmt.Errorf("list campaign updates: %w", err)
	}
	defer rows.Close()

	var out []*domain.CampaignUpdate
	for rows.Next() {
		var u domain.CampaignUpdate
		if err := rows.Scan(&u.ID, &u.CampaignID, &u.Title, &u.Content, &u.ImageURL, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign update: %w", err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}
