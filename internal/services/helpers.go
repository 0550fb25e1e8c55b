package services

import (
	"context"
	"encoding/json"
	"errors"

	"credhub/internal/caching"
	"credhub/internal/common"
	"credhub/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func isNotConfigured(err error) bool {
	return errors.Is(err, common.ErrNotConfigured)
}

// entityValues renders a record as a flat JSON object for the audit trail.
// Embedded relations are dropped.
func entityValues(v any) models.JSONB {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	values := models.JSONB{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil
	}
	for _, relation := range []string{"organization", "location", "workflow", "provider"} {
		delete(values, relation)
	}
	return values
}

// WriteEffects runs the best-effort follow-ups of a successful write: an
// audit entry and dashboard cache invalidation. Failures are logged only.
type WriteEffects struct {
	audit  AuditLogsService
	cache  caching.CacheService
	logger *zap.Logger
}

func NewWriteEffects(audit AuditLogsService, cache caching.CacheService, logger *zap.Logger) WriteEffects {
	return WriteEffects{audit: audit, cache: cache, logger: logger}
}

func (w WriteEffects) created(ctx context.Context, orgID uuid.UUID, table, recordID string, actorID *uuid.UUID, record any) {
	if w.audit != nil {
		if err := w.audit.LogEntityCreate(ctx, orgID, table, recordID, actorID, entityValues(record)); err != nil {
			w.log().Warn("audit log failed", zap.String("table", table), zap.String("record_id", recordID), zap.Error(err))
		}
	}
	w.invalidateStats(ctx)
}

func (w WriteEffects) updated(ctx context.Context, orgID uuid.UUID, table, recordID string, actorID *uuid.UUID, before, after any) {
	if w.audit != nil {
		var old models.JSONB
		if before != nil {
			old = entityValues(before)
		}
		if err := w.audit.LogEntityUpdate(ctx, orgID, table, recordID, actorID, old, entityValues(after)); err != nil {
			w.log().Warn("audit log failed", zap.String("table", table), zap.String("record_id", recordID), zap.Error(err))
		}
	}
	w.invalidateStats(ctx)
}

func (w WriteEffects) invalidateStats(ctx context.Context) {
	if w.cache == nil {
		return
	}
	if err := w.cache.InvalidateDashboardStats(ctx); err != nil {
		w.log().Warn("dashboard stats invalidation failed", zap.Error(err))
	}
}

func (w WriteEffects) log() *zap.Logger {
	if w.logger == nil {
		return zap.NewNop()
	}
	return w.logger
}
