package services

import (
	"context"
	"errors"
	"time"

	"credhub/internal/models"
	"credhub/internal/repositories"

	"github.com/google/uuid"
)

type AuditLogsService interface {
	// Create audit log entry
	LogActivity(ctx context.Context, organizationID uuid.UUID, tableName, recordID, action string, changedBy *uuid.UUID, oldValues, newValues models.JSONB) error

	// Query audit logs
	ListAuditLogs(ctx context.Context, organizationID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error)

	// Helper methods for common audit scenarios
	LogEntityCreate(ctx context.Context, organizationID uuid.UUID, tableName, recordID string, changedBy *uuid.UUID, newValues models.JSONB) error
	LogEntityUpdate(ctx context.Context, organizationID uuid.UUID, tableName, recordID string, changedBy *uuid.UUID, oldValues, newValues models.JSONB) error
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{
		auditLogsRepo: auditLogsRepo,
	}
}

// LogActivity creates a new audit log entry with validation
func (s *auditLogsService) LogActivity(ctx context.Context, organizationID uuid.UUID, tableName, recordID, action string, changedBy *uuid.UUID, oldValues, newValues models.JSONB) error {
	if tableName == "" {
		return errors.New("table_name is required")
	}
	if action == "" {
		return errors.New("action is required")
	}
	if organizationID == uuid.Nil {
		return errors.New("organization_id is required")
	}

	auditLog := &models.AuditLog{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		TableName:      tableName,
		RecordID:       recordID,
		Action:         action,
		NewValues:      newValues,
		OldValues:      oldValues,
		ChangedBy:      changedBy,
		CreatedAt:      time.Now(),
	}

	return s.auditLogsRepo.Create(ctx, auditLog)
}

// ListAuditLogs retrieves audit log entries for one organization, newest first
func (s *auditLogsService) ListAuditLogs(ctx context.Context, organizationID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}
	if filters.Limit <= 0 || filters.Limit > 500 {
		filters.Limit = 100
	}

	logs, err := s.auditLogsRepo.List(ctx, organizationID, filters)
	if isNotConfigured(err) {
		return []*models.AuditLog{}, nil
	}
	return logs, err
}

func (s *auditLogsService) LogEntityCreate(ctx context.Context, organizationID uuid.UUID, tableName, recordID string, changedBy *uuid.UUID, newValues models.JSONB) error {
	return s.LogActivity(ctx, organizationID, tableName, recordID, models.ActionInsert, changedBy, nil, newValues)
}

func (s *auditLogsService) LogEntityUpdate(ctx context.Context, organizationID uuid.UUID, tableName, recordID string, changedBy *uuid.UUID, oldValues, newValues models.JSONB) error {
	return s.LogActivity(ctx, organizationID, tableName, recordID, models.ActionUpdate, changedBy, oldValues, newValues)
}
