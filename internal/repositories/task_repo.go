package repositories

import (
	"context"
	"fmt"

	"credhub/internal/common"
	"credhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TaskRepository interface {
	List(ctx context.Context, filters models.TaskFilters, viewerID *uuid.UUID) ([]*models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	// Update only reaches tasks the viewer can list. A nil viewer is an
	// internal call and is not scoped.
	Update(ctx context.Context, id uuid.UUID, patch *models.TaskPatch, viewerID *uuid.UUID) (*models.Task, error)
	// CheckReferences fails with an invalid QueryError unless each non-nil
	// workflow and provider belongs to one of the viewer's organizations.
	CheckReferences(ctx context.Context, viewerID uuid.UUID, workflowID, providerID *uuid.UUID) error
}

// taskVisible is the viewer condition for tasks, which reach an
// organization through their provider or workflow.
const taskVisible = `(provider_id IN (SELECT id FROM providers WHERE ` + memberOrgs + `)
	OR workflow_id IN (SELECT id FROM workflows WHERE ` + memberOrgs + `)
	OR assigned_to = $%[1]d)`

type taskRepo struct {
	db DBTX
}

func NewTaskRepo(db DBTX) TaskRepository {
	return &taskRepo{db: db}
}

const taskSelect = `
	SELECT t.id, t.workflow_id, t.provider_id, t.title, t.description, t.status, t.priority, t.due_date,
		t.assigned_to, t.completed_at, t.created_at, t.updated_at,
		to_jsonb(w) AS workflow, to_jsonb(p) AS provider`

const taskJoins = `
		LEFT JOIN workflows w ON w.id = t.workflow_id
		LEFT JOIN providers p ON p.id = t.provider_id`

func scanTask(row pgx.Row) (*models.Task, error) {
	t := &models.Task{}
	err := row.Scan(&t.ID, &t.WorkflowID, &t.ProviderID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.AssignedTo, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt, &t.Workflow, &t.Provider)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns tasks newest first. Tasks carry no organization column, so a
// viewer sees tasks attached to a provider or workflow of one of the
// viewer's organizations, plus tasks assigned to the viewer.
func (r *taskRepo) List(ctx context.Context, filters models.TaskFilters, viewerID *uuid.UUID) ([]*models.Task, error) {
	var conds []string
	var args []any
	if filters.WorkflowID != nil {
		args = append(args, *filters.WorkflowID)
		conds = append(conds, fmt.Sprintf("t.workflow_id = $%d", len(args)))
	}
	if filters.ProviderID != nil {
		args = append(args, *filters.ProviderID)
		conds = append(conds, fmt.Sprintf("t.provider_id = $%d", len(args)))
	}
	if filters.Status != nil {
		args = append(args, *filters.Status)
		conds = append(conds, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if filters.AssignedTo != nil {
		args = append(args, *filters.AssignedTo)
		conds = append(conds, fmt.Sprintf("t.assigned_to = $%d", len(args)))
	}
	if viewerID != nil {
		args = append(args, *viewerID)
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(p.organization_id IN (SELECT organization_id FROM org_members WHERE user_id = $%d)
			OR w.organization_id IN (SELECT organization_id FROM org_members WHERE user_id = $%d)
			OR t.assigned_to = $%d)`, n, n, n))
	}

	query := taskSelect + `
		FROM tasks t` + taskJoins + whereClause(conds) + `
		ORDER BY t.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list tasks", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, mapError("list tasks", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, mapError("list tasks", rows.Err())
}

func (r *taskRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `
		WITH inserted AS (
			INSERT INTO tasks (workflow_id, provider_id, title, description, status, priority, due_date,
				assigned_to, completed_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
			RETURNING *
		)` + taskSelect + `
		FROM inserted t` + taskJoins

	created, err := scanTask(r.db.QueryRow(ctx, query,
		task.WorkflowID, task.ProviderID, task.Title, task.Description, task.Status, task.Priority,
		task.DueDate, task.AssignedTo, task.CompletedAt))
	if err != nil {
		return nil, mapError("create task", err)
	}
	return created, nil
}

func (r *taskRepo) Update(ctx context.Context, id uuid.UUID, patch *models.TaskPatch, viewerID *uuid.UUID) (*models.Task, error) {
	update, args := updateStatement("tasks", id, patch.Assignments(), viewerID, taskVisible)
	query := `WITH updated AS (` + update + `)` + taskSelect + `
		FROM updated t` + taskJoins

	updated, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError("update task", err)
	}
	return updated, nil
}

func (r *taskRepo) CheckReferences(ctx context.Context, viewerID uuid.UUID, workflowID, providerID *uuid.UUID) error {
	query := `
		SELECT
			($1::uuid IS NULL OR EXISTS (SELECT 1 FROM workflows WHERE id = $1 AND ` + fmt.Sprintf(memberOrgs, 3) + `)),
			($2::uuid IS NULL OR EXISTS (SELECT 1 FROM providers WHERE id = $2 AND ` + fmt.Sprintf(memberOrgs, 3) + `))`

	var workflowOK, providerOK bool
	if err := r.db.QueryRow(ctx, query, workflowID, providerID, viewerID).Scan(&workflowOK, &providerOK); err != nil {
		return mapError("check task references", err)
	}
	if !workflowOK {
		return common.NewQueryError("check task references", common.QueryKindInvalid,
			"workflow %s is not in any of your organizations", workflowID.String())
	}
	if !providerOK {
		return common.NewQueryError("check task references", common.QueryKindInvalid,
			"provider %s is not in any of your organizations", providerID.String())
	}
	return nil
}
