package handlers

import (
	"net/http"
	"strconv"

	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuditLogsHandlers handles audit logs related HTTP requests
type AuditLogsHandlers struct {
	auditLogsService services.AuditLogsService
}

func NewAuditLogsHandlers(auditLogsService services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditLogsService: auditLogsService}
}

// ListAuditLogs godoc
// @Summary      Write history of the current organization, newest first
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        table     query string false "table name"
// @Param        record_id query string false "record id"
// @Param        action    query string false "INSERT or UPDATE"
// @Param        user_id   query string false "actor"
// @Param        limit     query int    false "defaults to 100"
// @Success      200 {array} models.AuditLog
// @Failure      403 {object} common.ErrorResponse
// @Router       /audit-logs [get]
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	ctx := c.Request().Context()

	orgID, ok := common.GetOrganizationIDFromContext(ctx)
	if !ok {
		return common.SendForbiddenError(c, "Organization membership required")
	}

	filters := &models.AuditLogFilters{}
	if table := c.QueryParam("table"); table != "" {
		filters.TableName = &table
	}
	if recordID := c.QueryParam("record_id"); recordID != "" {
		filters.RecordID = &recordID
	}
	if action := c.QueryParam("action"); action != "" {
		filters.Action = &action
	}
	if userID := c.QueryParam("user_id"); userID != "" {
		uid, err := uuid.Parse(userID)
		if err != nil {
			return common.SendValidationError(c, "user_id", "user_id must be a valid UUID")
		}
		filters.ChangedBy = &uid
	}
	if limit := c.QueryParam("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return common.SendValidationError(c, "limit", "limit must be a positive number")
		}
		filters.Limit = n
	}

	logs, err := h.auditLogsService.ListAuditLogs(ctx, orgID, filters)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
