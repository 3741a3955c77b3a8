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

type OrganizationRepository interface {
	Create(ctx context.Context, o *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	GetByEIN(ctx context.Context, ein string) (*domain.Organization, error)
	Search(ctx context.Context, query, state, category string, limit int) ([]*domain.Organization, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Organization, int64, error)
	MarkVerified(ctx context.Context, o *domain.Organization) error
}

type organizationRepo struct {
	db *pgxpool.Pool
}

func NewOrganizationRepo(db *pgxpool.Pool) OrganizationRepository {
	return &organizationRepo{db: db}
}

const organizationColumns = `
	id, ein, name, description, mission_statement, website_url, logo_url,
	city, state, ntee_code, category, tax_exempt_status, deductibility_status,
	verification_status, verified_at, is_active, created_at, updated_at`

func scanOrganization(row pgx.Row) (*domain.Organization, error) {
	var o domain.Organization
	err := row.Scan(
		&o.ID, &o.EIN, &o.Name, &o.Description, &o.MissionStatement, &o.WebsiteURL, &o.LogoURL,
		&o.City, &o.State, &o.NTEECode, &o.Category, &o.TaxExemptStatus, &o.DeductibilityStatus,
		&o.VerificationStatus, &o.VerifiedAt, &o.IsActive, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *organizationRepo) Create(ctx context.Context, o *domain.Organization) error {
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO organizations (
			id, ein, name, description, mission_statement, website_url, logo_url,
			city, state, ntee_code, category, tax_exempt_status, deductibility_status,
			verification_status, verified_at, is_active, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		o.ID, o.EIN, o.Name, o.Description, o.MissionStatement, o.WebsiteURL, o.LogoURL,
		o.City, o.State, o.NTEECode, o.Category, o.TaxExemptStatus, o.DeductibilityStatus,
		o.VerificationStatus, o.VerifiedAt, o.IsActive, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			return xerrors.ErrEINAlreadyRegistered
		}
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

func (r *organizationRepo) getOne(ctx context.Context, query string, args ...any) (*domain.Organization, error) {
	o, err := scanOrganization(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, xerrors.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return o, nil
}

func (r *organizationRepo) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	return r.getOne(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id)
}

func (r *organizationRepo) GetByEIN(ctx context.Context, ein string) (*domain.Organization, error) {
	return r.getOne(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE ein = $1`, ein)
}

func (r *organizationRepo) Search(ctx context.Context, query, state, category string, limit int) ([]*domain.Organization, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	where := ` WHERE is_active = TRUE AND name ILIKE $1`
	args := []any{"%" + query + "%"}
	n := 1

	if state != "" {
		n++
		where += fmt.Sprintf(" AND state = $%d", n)
		args = append(args, state)
	}
	if category != "" {
		n++
		where += fmt.Sprintf(" AND ntee_code ILIKE $%d", n)
		args = append(args, category+"%")
	}

	args = append(args, limit)
	rows, err := r.db.Query(ctx,
		`SELECT `+organizationColumns+` FROM organizations`+where+
			fmt.Sprintf(" ORDER BY name ASC LIMIT $%d", n+1),
		args...)
	if err != nil {
		return nil, fmt.Errorf("search organizations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *organizationRepo) List(ctx context.Context, limit, offset int) ([]*domain.Organization, int64, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM organizations WHERE is_active = TRUE`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count organizations: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+organizationColumns+` FROM organizations
		 WHERE is_active = TRUE
		 ORDER BY name ASC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan organization: %w", err)
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *organizationRepo) MarkVerified(ctx context.Context, o *domain.Organization) error {
	o.UpdatedAt = time.Now()

	tag, err := r.db.Exec(ctx, `
		UPDATE organizations SET
			name = $2, city = $3, state = $4, ntee_code = $5, category = $6,
			tax_exempt_status = $7, deductibility_status = $8,
			verification_status = $9, verified_at = $10, updated_at = $11
		WHERE id = $1`,
		o.ID, o.Name, o.City, o.State, o.NTEECode, o.Category,
		o.TaxExemptStatus, o.DeductibilityStatus,
		o.VerificationStatus, o.VerifiedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("mark organization verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrOrganizationNotFound
	}
	return nil
}
