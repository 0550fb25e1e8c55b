package repositories

import (
	"context"
	"fmt"
	"strings"

	"credhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by *pgxpool.Pool, pgx.Tx, the
// database.Client handle and pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RunInTx runs fn inside a transaction on db, committing when fn succeeds.
func RunInTx(ctx context.Context, db DBTX, fn func(tx DBTX) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return mapError("commit transaction", tx.Commit(ctx))
}

// scopeClause renders the WHERE conditions for a Scope against alias,
// appending the bound values to args.
func scopeClause(alias string, scope models.Scope, args []any) ([]string, []any) {
	var conds []string
	if scope.OrganizationID != nil {
		args = append(args, *scope.OrganizationID)
		conds = append(conds, fmt.Sprintf("%s.organization_id = $%d", alias, len(args)))
	}
	if scope.ViewerID != nil {
		args = append(args, *scope.ViewerID)
		conds = append(conds, alias+"."+fmt.Sprintf(memberOrgs, len(args)))
	}
	return conds, args
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// updateStatement renders a partial UPDATE ... RETURNING * for the patched
// columns. updated_at is always bumped. With a viewer, visible is added to
// the WHERE clause with every %[1]d bound to the viewer's id.
func updateStatement(table string, id uuid.UUID, set []models.Assignment, viewerID *uuid.UUID, visible string) (string, []any) {
	clauses := make([]string, 0, len(set)+1)
	args := make([]any, 0, len(set)+2)
	for _, a := range set {
		args = append(args, a.Value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", a.Column, len(args)))
	}
	clauses = append(clauses, "updated_at = NOW()")
	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if viewerID != nil {
		args = append(args, *viewerID)
		where += " AND " + fmt.Sprintf(visible, len(args))
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING *", table, strings.Join(clauses, ", "), where)
	return query, args
}

// memberOrgs matches organization_id against the viewer's memberships.
const memberOrgs = `organization_id IN (SELECT organization_id FROM org_members WHERE user_id = $%[1]d)`
