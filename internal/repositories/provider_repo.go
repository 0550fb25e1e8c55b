package repositories

import (
	"context"
	"time"

	"credhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProviderRepository interface {
	List(ctx context.Context, scope models.Scope) ([]*models.Provider, error)
	// GetByID and Update only reach providers of the viewer's organizations.
	// A nil viewer is an internal call and is not scoped.
	GetByID(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Provider, error)
	Create(ctx context.Context, provider *models.Provider) (*models.Provider, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.ProviderPatch, viewerID *uuid.UUID) (*models.Provider, error)
	// ListLicenseExpired returns providers whose license expired before asOf
	// and who are not yet marked expired.
	ListLicenseExpired(ctx context.Context, organizationID *uuid.UUID, asOf time.Time) ([]*models.Provider, error)
}

type providerRepo struct {
	db DBTX
}

func NewProviderRepo(db DBTX) ProviderRepository {
	return &providerRepo{db: db}
}

const providerSelect = `
	SELECT p.id, p.organization_id, p.location_id, p.first_name, p.last_name, p.email, p.phone,
		p.specialty, p.license_number, p.license_expiry, p.status, p.created_at, p.updated_at,
		to_jsonb(o) AS organization, to_jsonb(l) AS location`

const providerJoins = `
		JOIN organizations o ON o.id = p.organization_id
		LEFT JOIN locations l ON l.id = p.location_id`

func scanProvider(row pgx.Row) (*models.Provider, error) {
	p := &models.Provider{}
	err := row.Scan(&p.ID, &p.OrganizationID, &p.LocationID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&p.Specialty, &p.LicenseNumber, &p.LicenseExpiry, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		&p.Organization, &p.Location)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *providerRepo) collect(op string, rows pgx.Rows, err error) ([]*models.Provider, error) {
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	providers := []*models.Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		providers = append(providers, p)
	}
	return providers, mapError(op, rows.Err())
}

func (r *providerRepo) List(ctx context.Context, scope models.Scope) ([]*models.Provider, error) {
	conds, args := scopeClause("p", scope, nil)
	query := providerSelect + `
		FROM providers p` + providerJoins + whereClause(conds) + `
		ORDER BY p.last_name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	return r.collect("list providers", rows, err)
}

func (r *providerRepo) GetByID(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Provider, error) {
	args := []any{id}
	conds := []string{"p.id = $1"}
	scopeConds, args := scopeClause("p", models.Scope{ViewerID: viewerID}, args)
	conds = append(conds, scopeConds...)

	query := providerSelect + `
		FROM providers p` + providerJoins + whereClause(conds)
	p, err := scanProvider(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError("get provider", err)
	}
	return p, nil
}

func (r *providerRepo) Create(ctx context.Context, provider *models.Provider) (*models.Provider, error) {
	query := `
		WITH inserted AS (
			INSERT INTO providers (organization_id, location_id, first_name, last_name, email, phone,
				specialty, license_number, license_expiry, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			RETURNING *
		)` + providerSelect + `
		FROM inserted p` + providerJoins

	created, err := scanProvider(r.db.QueryRow(ctx, query,
		provider.OrganizationID, provider.LocationID, provider.FirstName, provider.LastName,
		provider.Email, provider.Phone, provider.Specialty, provider.LicenseNumber,
		provider.LicenseExpiry, provider.Status))
	if err != nil {
		return nil, mapError("create provider", err)
	}
	return created, nil
}

func (r *providerRepo) Update(ctx context.Context, id uuid.UUID, patch *models.ProviderPatch, viewerID *uuid.UUID) (*models.Provider, error) {
	update, args := updateStatement("providers", id, patch.Assignments(), viewerID, memberOrgs)
	query := `WITH updated AS (` + update + `)` + providerSelect + `
		FROM updated p` + providerJoins

	updated, err := scanProvider(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError("update provider", err)
	}
	return updated, nil
}

func (r *providerRepo) ListLicenseExpired(ctx context.Context, organizationID *uuid.UUID, asOf time.Time) ([]*models.Provider, error) {
	args := []any{asOf.Format(models.DateLayout)}
	conds := []string{"p.license_expiry < $1::date", "p.status <> 'expired'"}
	scopeConds, args := scopeClause("p", models.Scope{OrganizationID: organizationID}, args)
	conds = append(conds, scopeConds...)

	query := providerSelect + `
		FROM providers p` + providerJoins + whereClause(conds) + `
		ORDER BY p.license_expiry ASC`

	rows, err := r.db.Query(ctx, query, args...)
	return r.collect("list expired licenses", rows, err)
}
