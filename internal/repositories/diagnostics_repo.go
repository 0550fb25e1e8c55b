package repositories

import (
	"context"
	"fmt"
)

// RequiredTables are the tables the dashboard depends on.
var RequiredTables = []string{"organizations", "org_members", "locations", "providers", "workflows", "tasks", "users"}

// Relationship probes join a child table to its parents.
var RelationshipProbes = map[string]string{
	"providers_with_organization_and_location": `
		SELECT COUNT(*) FROM (
			SELECT p.id FROM providers p
			JOIN organizations o ON o.id = p.organization_id
			LEFT JOIN locations l ON l.id = p.location_id
			LIMIT 5
		) probe`,
	"tasks_with_workflow_and_provider": `
		SELECT COUNT(*) FROM (
			SELECT t.id FROM tasks t
			LEFT JOIN workflows w ON w.id = t.workflow_id
			LEFT JOIN providers p ON p.id = t.provider_id
			LIMIT 5
		) probe`,
}

type DiagnosticsRepository interface {
	Ping(ctx context.Context) error
	TableExists(ctx context.Context, table string) (bool, error)
	CountRows(ctx context.Context, table string) (int64, error)
	ProbeRelationship(ctx context.Context, name string) (int, error)
}

type diagnosticsRepo struct {
	db DBTX
}

func NewDiagnosticsRepo(db DBTX) DiagnosticsRepository {
	return &diagnosticsRepo{db: db}
}

func (r *diagnosticsRepo) Ping(ctx context.Context) error {
	var one int
	return mapError("ping", r.db.QueryRow(ctx, `SELECT 1`).Scan(&one))
}

func (r *diagnosticsRepo) TableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)`
	if err := r.db.QueryRow(ctx, query, table).Scan(&exists); err != nil {
		return false, mapError("verify table "+table, err)
	}
	return exists, nil
}

// CountRows only accepts names from RequiredTables.
func (r *diagnosticsRepo) CountRows(ctx context.Context, table string) (int64, error) {
	if !isRequiredTable(table) {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, mapError("count "+table, err)
	}
	return n, nil
}

func (r *diagnosticsRepo) ProbeRelationship(ctx context.Context, name string) (int, error) {
	query, ok := RelationshipProbes[name]
	if !ok {
		return 0, fmt.Errorf("unknown relationship probe %q", name)
	}
	var n int
	if err := r.db.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, mapError("probe "+name, err)
	}
	return n, nil
}

func isRequiredTable(table string) bool {
	for _, t := range RequiredTables {
		if t == table {
			return true
		}
	}
	return false
}
