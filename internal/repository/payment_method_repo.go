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

type PaymentMethodRepository interface {
	Create(ctx context.Context, pm *domain.PaymentMethod) error
	ListByUser(ctx context.Context, userID string) ([]*domain.PaymentMethod, error)
	SetDefault(ctx context.Context, userID, id string) error
	Deactivate(ctx context.Context, userID, id string) error
}

type paymentMethodRepo struct {
	db *pgxpool.Pool
}

func NewPaymentMethodRepo(db *pgxpool.Pool) PaymentMethodRepository {
	return &paymentMethodRepo{db: db}
}

func (r *paymentMethodRepo) Create(ctx context.Context, pm *domain.PaymentMethod) error {
	pm.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO payment_methods (
			id, user_id, method_type, provider, provider_ref,
			last_four, brand, expiry_month, expiry_year,
			is_default, is_active, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		pm.ID, pm.UserID, pm.MethodType, pm.Provider, pm.ProviderRef,
		pm.LastFour, pm.Brand, pm.ExpiryMonth, pm.ExpiryYear,
		pm.IsDefault, pm.IsActive, pm.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment method: %w", err)
	}
	return nil
}

func (r *paymentMethodRepo) ListByUser(ctx context.Context, userID string) ([]*domain.PaymentMethod, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, method_type, provider, provider_ref,
		       last_four, brand, expiry_month, expiry_year,
		       is_default, is_active, created_at
		FROM payment_methods
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY is_default DESC, created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var out []*domain.PaymentMethod
	for rows.Next() {
		var pm domain.PaymentMethod
		if err := rows.Scan(
			&pm.ID, &pm.UserID, &pm.MethodType, &pm.Provider, &pm.ProviderRef,
			&pm.LastFour, &pm.Brand, &pm.ExpiryMonth, &pm.ExpiryYear,
			&pm.IsDefault, &pm.IsActive, &pm.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		out = append(out, &pm)
	}
	return out, rows.Err()
}

// SetDefault makes one instrument default and clears the flag on the
// user's others in a single transaction.
func (r *paymentMethodRepo) SetDefault(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE payment_methods SET is_default = FALSE WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear default: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE payment_methods SET is_default = TRUE
		 WHERE id = $1 AND user_id = $2 AND is_active = TRUE`,
		id, userID)
	if err != nil {
		return fmt.Errorf("set default: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrPaymentMethodNotFound
	}

	return tx.Commit(ctx)
}

func (r *paymentMethodRepo) Deactivate(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE payment_methods SET is_active = FALSE, is_default = FALSE
		 WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return fmt.Errorf("deactivate payment method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrPaymentMethodNotFound
	}
	return nil
}
