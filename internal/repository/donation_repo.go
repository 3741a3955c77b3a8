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

type DonationRepository interface {
	// Create inserts a donation row. A nil tx runs against the pool;
	// settlement passes its serializable transaction.
	Create(ctx context.Context, tx pgx.Tx, d *domain.Donation) error
	GetByID(ctx context.Context, id string) (*domain.Donation, error)
	UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error
	SetMatchingGift(ctx context.Context, id string, status domain.MatchingGiftStatus, amount decimal.Decimal) error
	MarkReceiptSent(ctx context.Context, id, receiptNumber string) error
	ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]*domain.Donation, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Donation, error)
	// YearlyCompleted lists a donor's completed donations for a tax year
	// together with their total.
	YearlyCompleted(ctx context.Context, userID string, year int) ([]*domain.Donation, decimal.Decimal, error)
	// Analytics aggregates completed donations for a campaign.
	Analytics(ctx context.Context, campaignID string) (*domain.CampaignAnalytics, error)
}

type donationRepo struct {
	db *pgxpool.Pool
}

func NewDonationRepo(db *pgxpool.Pool) DonationRepository {
	return &donationRepo{db: db}
}

func (r *donationRepo) exec(tx pgx.Tx) dbtx {
	if tx != nil {
		return tx
	}
	return r.db
}

const donationColumns = `
	id, user_id, organization_id, campaign_id, amount, currency,
	payment_method, payment_processor_id, payment_status,
	transaction_fee, platform_fee, net_amount,
	is_recurring, recurring_interval, is_anonymous, donor_message,
	dedication_type, dedication_name,
	matching_gift_eligible, matching_gift_status, matching_gift_amount,
	tax_receipt_sent, tax_receipt_number, created_at, updated_at`

func scanDonation(row pgx.Row) (*domain.Donation, error) {
	var d domain.Donation
	err := row.Scan(
		&d.ID, &d.UserID, &d.OrganizationID, &d.CampaignID, &d.Amount, &d.Currency,
		&d.PaymentMethod, &d.PaymentProcessorID, &d.PaymentStatus,
		&d.TransactionFee, &d.PlatformFee, &d.NetAmount,
		&d.IsRecurring, &d.RecurringInterval, &d.IsAnonymous, &d.DonorMessage,
		&d.DedicationType, &d.DedicationName,
		&d.MatchingGiftEligible, &d.MatchingGiftStatus, &d.MatchingGiftAmount,
		&d.TaxReceiptSent, &d.TaxReceiptNumber, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *donationRepo) Create(ctx context.Context, tx pgx.Tx, d *domain.Donation) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	_, err := r.exec(tx).Exec(ctx, `
		INSERT INTO donations (
			id, user_id, organization_id, campaign_id, amount, currency,
			payment_method, payment_processor_id, payment_status,
			transaction_fee, platform_fee, net_amount,
			is_recurring, recurring_interval, is_anonymous, donor_message,
			dedication_type, dedication_name,
			matching_gift_eligible, matching_gift_status, matching_gift_amount,
			tax_receipt_sent, tax_receipt_number, created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,
			$17,$18,$19,$20,$21,$22,$23,$24,$25
		)`,
		d.ID, d.UserID, d.OrganizationID, d.CampaignID, d.Amount, d.Currency,
		d.PaymentMethod, d.PaymentProcessorID, d.PaymentStatus,
		d.TransactionFee, d.PlatformFee, d.NetAmount,
		d.IsRecurring, d.RecurringInterval, d.IsAnonymous, d.DonorMessage,
		d.DedicationType, d.DedicationName,
		d.MatchingGiftEligible, d.MatchingGiftStatus, d.MatchingGiftAmount,
		d.TaxReceiptSent, d.TaxReceiptNumber, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

func (r *donationRepo) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	d, err := scanDonation(r.db.QueryRow(ctx,
		`SELECT `+donationColumns+` FROM donations WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, xerrors.ErrDonationNotFound
		}
		return nil, fmt.Errorf("get donation: %w", err)
	}
	return d, nil
}

func (r *donationRepo) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE donations SET payment_status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now())
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrDonationNotFound
	}
	return nil
}

func (r *donationRepo) SetMatchingGift(ctx context.Context, id string, status domain.MatchingGiftStatus, amount decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE donations
		SET matching_gift_status = $2, matching_gift_amount = $3, updated_at = $4
		WHERE id = $1`,
		id, status, amount, time.Now())
	if err != nil {
		return fmt.Errorf("set matching gift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrDonationNotFound
	}
	return nil
}

func (r *donationRepo) MarkReceiptSent(ctx context.Context, id, receiptNumber string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE donations
		SET tax_receipt_sent = TRUE, tax_receipt_number = $2, updated_at = $3
		WHERE id = $1`,
		id, receiptNumber, time.Now())
	if err != nil {
		return fmt.Errorf("mark receipt sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrDonationNotFound
	}
	return nil
}

func (r *donationRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Donation, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *donationRepo) ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]*domain.Donation, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return r.list(ctx,
		`SELECT `+donationColumns+` FROM donations
		 WHERE campaign_id = $1 AND payment_status = 'completed'
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		campaignID, limit, offset)
}

func (r *donationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Donation, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return r.list(ctx,
		`SELECT `+donationColumns+` FROM donations
		 WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
}

func (r *donationRepo) YearlyCompleted(ctx context.Context, userID string, year int) ([]*domain.Donation, decimal.Decimal, error) {
	donations, err := r.list(ctx,
		`SELECT `+donationColumns+` FROM donations
		 WHERE user_id = $1
		   AND payment_status = 'completed'
		   AND EXTRACT(YEAR FROM created_at) = $2
		 ORDER BY created_at ASC`,
		userID, year)
	if err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	for _, d := range donations {
		total = total.Add(d.Amount)
	}
	return donations, total, nil
}

func (r *donationRepo) Analytics(ctx context.Context, campaignID string) (*domain.CampaignAnalytics, error) {
	a := &domain.CampaignAnalytics{CampaignID: campaignID}

	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(amount), 0),
			COALESCE(AVG(amount), 0),
			COUNT(DISTINCT user_id)
		FROM donations
		WHERE campaign_id = $1 AND payment_status = 'completed'`,
		campaignID,
	).Scan(&a.TotalDonations, &a.TotalRaised, &a.AverageDonation, &a.UniqueDonors)
	if err != nil {
		return nil, fmt.Errorf("aggregate donations: %w", err)
	}
	a.AverageDonation = a.AverageDonation.Round(2)

	rows, err := r.db.Query(ctx, `
		SELECT to_char(created_at, 'YYYY-MM-DD') AS day, COUNT(*), SUM(amount)
		FROM donations
		WHERE campaign_id = $1 AND payment_status = 'completed'
		GROUP BY day
		ORDER BY day ASC`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day domain.DailyTotal
		if err := rows.Scan(&day.Date, &day.Count, &day.Amount); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		a.DailyData = append(a.DailyData, day)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	top, err := r.list(ctx,
		`SELECT `+donationColumns+` FROM donations
		 WHERE campaign_id = $1 AND payment_status = 'completed'
		 ORDER BY amount DESC LIMIT 5`,
		campaignID)
	if err != nil {
		return nil, err
	}
	a.TopDonations = top

	return a, nil
}
