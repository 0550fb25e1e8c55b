package repositories

import (
	"context"

	"credhub/internal/models"

	"github.com/jackc/pgx/v5"
)

type WorkflowRepository interface {
	List(ctx context.Context, scope models.Scope) ([]*models.Workflow, error)
	Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error)
}

type workflowRepo struct {
	db DBTX
}

func NewWorkflowRepo(db DBTX) WorkflowRepository {
	return &workflowRepo{db: db}
}

const workflowSelect = `
	SELECT w.id, w.organization_id, w.name, w.description, w.type, w.status, w.steps, w.created_by,
		w.created_at, w.updated_at, to_jsonb(o) AS organization`

func scanWorkflow(row pgx.Row) (*models.Workflow, error) {
	w := &models.Workflow{}
	err := row.Scan(&w.ID, &w.OrganizationID, &w.Name, &w.Description, &w.Type, &w.Status, &w.Steps,
		&w.CreatedBy, &w.CreatedAt, &w.UpdatedAt, &w.Organization)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *workflowRepo) List(ctx context.Context, scope models.Scope) ([]*models.Workflow, error) {
	conds, args := scopeClause("w", scope, nil)
	query := workflowSelect + `
		FROM workflows w
		JOIN organizations o ON o.id = w.organization_id` + whereClause(conds) + `
		ORDER BY w.name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list workflows", err)
	}
	defer rows.Close()

	workflows := []*models.Workflow{}
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, mapError("list workflows", err)
		}
		workflows = append(workflows, w)
	}
	return workflows, mapError("list workflows", rows.Err())
}

func (r *workflowRepo) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	steps := workflow.Steps
	if steps == nil {
		steps = []models.WorkflowStep{}
	}

	query := `
		WITH inserted AS (
			INSERT INTO workflows (organization_id, name, description, type, status, steps, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			RETURNING *
		)` + workflowSelect + `
		FROM inserted w
		JOIN organizations o ON o.id = w.organization_id`

	created, err := scanWorkflow(r.db.QueryRow(ctx, query,
		workflow.OrganizationID, workflow.Name, workflow.Description, workflow.Type, workflow.Status,
		steps, workflow.CreatedBy))
	if err != nil {
		return nil, mapError("create workflow", err)
	}
	return created, nil
}
