package repositories

import (
	"context"

	"credhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MembershipRepository interface {
	Create(ctx context.Context, m *models.Membership) (*models.Membership, error)
	ExistsForUser(ctx context.Context, userID uuid.UUID) (bool, error)
	// FirstForUser returns the user's earliest membership.
	FirstForUser(ctx context.Context, userID uuid.UUID) (*models.Membership, error)
	Get(ctx context.Context, userID, organizationID uuid.UUID) (*models.Membership, error)
}

type membershipRepo struct {
	db DBTX
}

func NewMembershipRepo(db DBTX) MembershipRepository {
	return &membershipRepo{db: db}
}

const membershipColumns = `id, user_id, organization_id, role, created_at, updated_at`

func scanMembership(row pgx.Row) (*models.Membership, error) {
	m := &models.Membership{}
	if err := row.Scan(&m.ID, &m.UserID, &m.OrganizationID, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *membershipRepo) Create(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	query := `
		INSERT INTO org_members (user_id, organization_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + membershipColumns
	created, err := scanMembership(r.db.QueryRow(ctx, query, m.UserID, m.OrganizationID, m.Role))
	if err != nil {
		return nil, mapError("create membership", err)
	}
	return created, nil
}

func (r *membershipRepo) ExistsForUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM org_members WHERE user_id = $1 LIMIT 1)`
	if err := r.db.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, mapError("check memberships", err)
	}
	return exists, nil
}

func (r *membershipRepo) FirstForUser(ctx context.Context, userID uuid.UUID) (*models.Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM org_members
		WHERE user_id = $1
		ORDER BY created_at ASC
		LIMIT 1
	`
	m, err := scanMembership(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, mapError("get membership", err)
	}
	return m, nil
}

func (r *membershipRepo) Get(ctx context.Context, userID, organizationID uuid.UUID) (*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM org_members WHERE user_id = $1 AND organization_id = $2`
	m, err := scanMembership(r.db.QueryRow(ctx, query, userID, organizationID))
	if err != nil {
		return nil, mapError("get membership", err)
	}
	return m, nil
}
