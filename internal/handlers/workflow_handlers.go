package handlers

import (
	"net/http"

	"credhub/internal/common"
	"credhub/internal/services"

	"github.com/labstack/echo/v4"
)

// WorkflowHandlers handles workflow template requests
type WorkflowHandlers struct {
	workflowService services.WorkflowService
}

func NewWorkflowHandlers(workflowService services.WorkflowService) *WorkflowHandlers {
	return &WorkflowHandlers{workflowService: workflowService}
}

// ListWorkflows godoc
// @Summary      List workflow templates by name
// @Tags         workflows
// @Produce      json
// @Security     BearerAuth
// @Param        organization_id query string false "organization filter"
// @Success      200 {array} models.Workflow
// @Router       /workflows [get]
func (h *WorkflowHandlers) ListWorkflows(c echo.Context) error {
	orgID, err := requestedOrganization(c)
	if err != nil {
		return common.SendValidationError(c, "organization_id", err.Error())
	}

	workflows, err := h.workflowService.List(c.Request().Context(), viewerID(c), orgID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, workflows)
}

// CreateWorkflow godoc
// @Summary      Create a workflow template
// @Tags         workflows
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body services.CreateWorkflowRequest true "workflow"
// @Success      201 {object} models.Workflow
// @Failure      400 {object} common.ErrorResponse
// @Router       /workflows [post]
func (h *WorkflowHandlers) CreateWorkflow(c echo.Context) error {
	var req services.CreateWorkflowRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	req.OrganizationID = organizationFallback(c, req.OrganizationID)

	workflow, err := h.workflowService.Create(c.Request().Context(), viewerID(c), &req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusCreated, workflow)
}
