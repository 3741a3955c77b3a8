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

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByProviderID(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	LinkProvider(ctx context.Context, userID string, provider domain.AuthProvider, providerID string) error
	UnlinkProvider(ctx context.Context, userID string) error
}

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `
	id, email, password_hash, first_name, last_name, phone,
	profile_image_url, auth_provider, auth_provider_id,
	email_verified, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone,
		&u.ProfileImageURL, &u.AuthProvider, &u.AuthProviderID,
		&u.EmailVerified, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, phone,
			profile_image_url, auth_provider, auth_provider_id,
			email_verified, is_active, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone,
		u.ProfileImageURL, u.AuthProvider, u.AuthProviderID,
		u.EmailVerified, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			return xerrors.ErrEmailAlreadyInUse
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepo) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, xerrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *userRepo) GetByProviderID(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error) {
	return r.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE auth_provider = $1 AND auth_provider_id = $2`,
		provider, providerID)
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now()

	tag, err := r.db.Exec(ctx, `
		UPDATE users SET
			first_name = $2, last_name = $3, phone = $4,
			profile_image_url = $5, email_verified = $6, is_active = $7,
			password_hash = $8, updated_at = $9
		WHERE id = $1`,
		u.ID, u.FirstName, u.LastName, u.Phone,
		u.ProfileImageURL, u.EmailVerified, u.IsActive,
		u.PasswordHash, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

func (r *userRepo) LinkProvider(ctx context.Context, userID string, provider domain.AuthProvider, providerID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET auth_provider = $2, auth_provider_id = $3, email_verified = TRUE, updated_at = $4
		WHERE id = $1`,
		userID, provider, providerID, time.Now())
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			return xerrors.ErrProviderLinked
		}
		return fmt.Errorf("link provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

func (r *userRepo) UnlinkProvider(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET auth_provider = 'email', auth_provider_id = NULL, updated_at = $2
		WHERE id = $1`,
		userID, time.Now())
	if err != nil {
		return fmt.Errorf("unlink provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}
