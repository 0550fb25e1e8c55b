package repositories

import (
	"context"

	"credhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) (*models.Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	List(ctx context.Context, viewerID *uuid.UUID) ([]*models.Organization, error)
}

type organizationRepo struct {
	db DBTX
}

func NewOrganizationRepo(db DBTX) OrganizationRepository {
	return &organizationRepo{db: db}
}

const organizationColumns = `id, name, address, phone, email, created_at, updated_at`

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	org := &models.Organization{}
	err := row.Scan(&org.ID, &org.Name, &org.Address, &org.Phone, &org.Email, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return org, nil
}

func (r *organizationRepo) Create(ctx context.Context, org *models.Organization) (*models.Organization, error) {
	query := `
		INSERT INTO organizations (name, address, phone, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + organizationColumns
	created, err := scanOrganization(r.db.QueryRow(ctx, query, org.Name, org.Address, org.Phone, org.Email))
	if err != nil {
		return nil, mapError("create organization", err)
	}
	return created, nil
}

func (r *organizationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`
	org, err := scanOrganization(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError("get organization", err)
	}
	return org, nil
}

// List returns organizations ordered by name. A viewer restricts the result
// to organizations the viewer is a member of.
func (r *organizationRepo) List(ctx context.Context, viewerID *uuid.UUID) ([]*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations`
	var args []any
	if viewerID != nil {
		query += ` WHERE id IN (SELECT organization_id FROM org_members WHERE user_id = $1)`
		args = append(args, *viewerID)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list organizations", err)
	}
	defer rows.Close()

	orgs := []*models.Organization{}
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, mapError("list organizations", err)
		}
		orgs = append(orgs, org)
	}
	return orgs, mapError("list organizations", rows.Err())
}
