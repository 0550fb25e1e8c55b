package repositories

import (
	"context"

	"credhub/internal/models"

	"github.com/jackc/pgx/v5"
)

type LocationRepository interface {
	List(ctx context.Context, scope models.Scope) ([]*models.Location, error)
	Create(ctx context.Context, location *models.Location) (*models.Location, error)
}

type locationRepo struct {
	db DBTX
}

func NewLocationRepo(db DBTX) LocationRepository {
	return &locationRepo{db: db}
}

const locationSelect = `
	SELECT l.id, l.organization_id, l.name, l.address, l.departments, l.status, l.created_at, l.updated_at,
		to_jsonb(o) AS organization`

func scanLocation(row pgx.Row) (*models.Location, error) {
	l := &models.Location{}
	err := row.Scan(&l.ID, &l.OrganizationID, &l.Name, &l.Address, &l.Departments, &l.Status,
		&l.CreatedAt, &l.UpdatedAt, &l.Organization)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *locationRepo) List(ctx context.Context, scope models.Scope) ([]*models.Location, error) {
	conds, args := scopeClause("l", scope, nil)
	query := locationSelect + `
		FROM locations l
		JOIN organizations o ON o.id = l.organization_id` + whereClause(conds) + `
		ORDER BY l.name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list locations", err)
	}
	defer rows.Close()

	locations := []*models.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, mapError("list locations", err)
		}
		locations = append(locations, l)
	}
	return locations, mapError("list locations", rows.Err())
}

func (r *locationRepo) Create(ctx context.Context, location *models.Location) (*models.Location, error) {
	query := `
		WITH inserted AS (
			INSERT INTO locations (organization_id, name, address, departments, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			RETURNING *
		)` + locationSelect + `
		FROM inserted l
		JOIN organizations o ON o.id = l.organization_id`

	created, err := scanLocation(r.db.QueryRow(ctx, query,
		location.OrganizationID, location.Name, location.Address, location.Departments, location.Status))
	if err != nil {
		return nil, mapError("create location", err)
	}
	return created, nil
}
