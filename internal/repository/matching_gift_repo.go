package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

type MatchingGiftRepository interface {
	Create(ctx context.Context, mg *domain.MatchingGift) error
	GetByID(ctx context.Context, id string) (*domain.MatchingGift, error)
	ExistsForDonation(ctx context.Context, donationID string) (bool, error)
	UpdateStatus(ctx context.Context, mg *domain.MatchingGift) error
}

type matchingGiftRepo struct {
	db *pgxpool.Pool
}

func NewMatchingGiftRepo(db *pgxpool.Pool) MatchingGiftRepository {
	return &matchingGiftRepo{db: db}
}

const matchingGiftColumns = `
	id, donation_id, employer_name, employer_ein, employee_email,
	match_ratio, match_amount, status,
	submitted_at, approved_at, paid_at, notes, created_at, updated_at`

func scanMatchingGift(row pgx.Row) (*domain.MatchingGift, error) {
	var mg domain.MatchingGift
	err := row.Scan(
		&mg.ID, &mg.DonationID, &mg.EmployerName, &mg.EmployerEIN, &mg.EmployeeEmail,
		&mg.MatchRatio, &mg.MatchAmount, &mg.Status,
		&mg.SubmittedAt, &mg.ApprovedAt, &mg.PaidAt, &mg.Notes, &mg.CreatedAt, &mg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &mg, nil
}

func (r *matchingGiftRepo) Create(ctx context.Context, mg *domain.MatchingGift) error {
	now := time.Now()
	mg.CreatedAt = now
	mg.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO matching_gifts (
			id, donation_id, employer_name, employer_ein, employee_email,
			match_ratio, match_amount, status,
			submitted_at, approved_at, paid_at, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		mg.ID, mg.DonationID, mg.EmployerName, mg.EmployerEIN, mg.EmployeeEmail,
		mg.MatchRatio, mg.MatchAmount, mg.Status,
		mg.SubmittedAt, mg.ApprovedAt, mg.PaidAt, mg.Notes, mg.CreatedAt, mg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert matching gift: %w", err)
	}
	return nil
}

func (r *matchingGiftRepo) GetByID(ctx context.Context, id string) (*domain.MatchingGift, error) {
	mg, err := scanMatchingGift(r.db.QueryRow(ctx,
		`SELECT `+matchingGiftColumns+` FROM matching_gifts WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("get matching gift: %w", err)
	}
	return mg, nil
}

func (r *matchingGiftRepo) ExistsForDonation(ctx context.Context, donationID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM matching_gifts WHERE donation_id = $1)`, donationID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check matching gift: %w", err)
	}
	return exists, nil
}

func (r *matchingGiftRepo) UpdateStatus(ctx context.Context, mg *domain.MatchingGift) error {
	mg.UpdatedAt = time.Now()

	tag, err := r.db.Exec(ctx, `
		UPDATE matching_gifts
		SET status = $2, submitted_at = $3, approved_at = $4, paid_at = $5,
		    notes = $6, updated_at = $7
		WHERE id = $1`,
		mg.ID, mg.Status, mg.SubmittedAt, mg.ApprovedAt, mg.PaidAt,
		mg.Notes, mg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update matching gift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
