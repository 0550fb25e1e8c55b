package handlers

import (
	"context"
	"net/http"
	"time"

	"credhub/internal/common"
	"credhub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ComplianceQueue hands a compliance check to the background workers and
// returns the queued task id.
type ComplianceQueue interface {
	EnqueueComplianceCheck(ctx context.Context, organizationID *uuid.UUID) (string, error)
}

// DashboardHandlers serves the headline counts and compliance check runs.
type DashboardHandlers struct {
	dashboardService  services.DashboardService
	complianceService services.ComplianceService
	queue             ComplianceQueue
	logger            *zap.Logger
}

// NewDashboardHandlers accepts a nil queue, in which case compliance checks
// run inside the request.
func NewDashboardHandlers(dashboardService services.DashboardService, complianceService services.ComplianceService, queue ComplianceQueue, logger *zap.Logger) *DashboardHandlers {
	return &DashboardHandlers{
		dashboardService:  dashboardService,
		complianceService: complianceService,
		queue:             queue,
		logger:            logger,
	}
}

// GetStats godoc
// @Summary      Provider, workflow and task counts
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        organization_id query string false "organization filter"
// @Success      200 {object} models.DashboardStats
// @Failure      403 {object} common.ErrorResponse
// @Router       /dashboard/stats [get]
func (h *DashboardHandlers) GetStats(c echo.Context) error {
	orgID, err := requestedOrganization(c)
	if err != nil {
		return common.SendValidationError(c, "organization_id", err.Error())
	}

	stats, err := h.dashboardService.Stats(c.Request().Context(), viewerID(c), orgID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// RunCompliance godoc
// @Summary      Run the license compliance check
// @Description  Marks providers with a past license expiry as expired and opens renewal tasks.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} models.ComplianceResult
// @Success      202 {object} map[string]string
// @Failure      403 {object} common.ErrorResponse
// @Router       /compliance/run [post]
func (h *DashboardHandlers) RunCompliance(c echo.Context) error {
	ctx := c.Request().Context()

	var orgID *uuid.UUID
	if id, ok := common.GetOrganizationIDFromContext(ctx); ok {
		orgID = &id
	}

	if h.queue != nil {
		taskID, err := h.queue.EnqueueComplianceCheck(ctx, orgID)
		if err == nil {
			return c.JSON(http.StatusAccepted, map[string]string{
				"status":  "queued",
				"task_id": taskID,
			})
		}
		h.logger.Warn("compliance check enqueue failed, running inline", zap.Error(err))
	}

	result, err := h.complianceService.Run(ctx, orgID, time.Now())
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
