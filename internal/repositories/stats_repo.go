package repositories

import (
	"context"
	"fmt"

	"credhub/internal/models"

	"golang.org/x/sync/errgroup"
)

type StatsRepository interface {
	// DashboardStats issues the four counts concurrently. Tasks belong to
	// an organization through their provider or workflow. A scope without
	// a viewer counts every organization.
	DashboardStats(ctx context.Context, scope models.Scope) (*models.DashboardStats, error)
}

type statsRepo struct {
	db DBTX
}

func NewStatsRepo(db DBTX) StatsRepository {
	return &statsRepo{db: db}
}

// taskInOrg is the organization condition for tasks.
const taskInOrg = `(provider_id IN (SELECT id FROM providers WHERE organization_id = $%[1]d)
	OR workflow_id IN (SELECT id FROM workflows WHERE organization_id = $%[1]d))`

func (r *statsRepo) count(ctx context.Context, op, query string, dst *int64, args ...any) func() error {
	return func() error {
		if err := r.db.QueryRow(ctx, query, args...).Scan(dst); err != nil {
			return mapError(op, err)
		}
		return nil
	}
}

func taskScope(scope models.Scope) ([]string, []any) {
	var conds []string
	var args []any
	if scope.OrganizationID != nil {
		args = append(args, *scope.OrganizationID)
		conds = append(conds, fmt.Sprintf(taskInOrg, len(args)))
	}
	if scope.ViewerID != nil {
		args = append(args, *scope.ViewerID)
		conds = append(conds, fmt.Sprintf(taskVisible, len(args)))
	}
	return conds, args
}

func (r *statsRepo) DashboardStats(ctx context.Context, scope models.Scope) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	providerConds, providerArgs := scopeClause("p", scope, nil)
	providersQuery := `SELECT COUNT(*) FROM providers p` + whereClause(providerConds)

	workflowConds, workflowArgs := scopeClause("w", scope, nil)
	workflowsQuery := `SELECT COUNT(*) FROM workflows w` + whereClause(append([]string{"w.status = 'active'"}, workflowConds...))

	taskConds, taskArgs := taskScope(scope)
	completedQuery := `SELECT COUNT(*) FROM tasks` + whereClause(append([]string{"status = 'completed'"}, taskConds...))
	pendingQuery := `SELECT COUNT(*) FROM tasks` + whereClause(append([]string{"status = 'pending'"}, taskConds...))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(r.count(gctx, "count providers", providersQuery, &stats.TotalProviders, providerArgs...))
	g.Go(r.count(gctx, "count active workflows", workflowsQuery, &stats.ActiveWorkflows, workflowArgs...))
	g.Go(r.count(gctx, "count completed tasks", completedQuery, &stats.CompletedTasks, taskArgs...))
	g.Go(r.count(gctx, "count pending tasks", pendingQuery, &stats.PendingTasks, taskArgs...))

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
