package repositories

import (
	"context"
	"fmt"

	"credhub/internal/models"

	"github.com/google/uuid"
)

type AuditLogsRepository interface {
	Create(ctx context.Context, auditLog *models.AuditLog) error
	List(ctx context.Context, organizationID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db DBTX
}

func NewAuditLogsRepo(db DBTX) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, auditLog *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (organization_id, table_name, record_id, action, new_values, old_values, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query,
		auditLog.OrganizationID, auditLog.TableName, auditLog.RecordID, auditLog.Action,
		auditLog.NewValues, auditLog.OldValues, auditLog.ChangedBy)
	return mapError("create audit log", err)
}

func (r *auditLogsRepo) List(ctx context.Context, organizationID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}

	query := `
		SELECT id, organization_id, table_name, record_id, action, new_values, old_values, changed_by, created_at
		FROM audit_logs
		WHERE organization_id = $1`
	args := []any{organizationID}

	if filters.TableName != nil {
		args = append(args, *filters.TableName)
		query += fmt.Sprintf(" AND table_name = $%d", len(args))
	}
	if filters.RecordID != nil {
		args = append(args, *filters.RecordID)
		query += fmt.Sprintf(" AND record_id = $%d", len(args))
	}
	if filters.Action != nil {
		args = append(args, *filters.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filters.ChangedBy != nil {
		args = append(args, *filters.ChangedBy)
		query += fmt.Sprintf(" AND changed_by = $%d", len(args))
	}

	limit := filters.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list audit logs", err)
	}
	defer rows.Close()

	logs := []*models.AuditLog{}
	for rows.Next() {
		l := &models.AuditLog{}
		if err := rows.Scan(&l.ID, &l.OrganizationID, &l.TableName, &l.RecordID, &l.Action,
			&l.NewValues, &l.OldValues, &l.ChangedBy, &l.CreatedAt); err != nil {
			return nil, mapError("list audit logs", err)
		}
		logs = append(logs, l)
	}
	return logs, mapError("list audit logs", rows.Err())
}
