package handlers

import (
	"net/http"
	"strings"

	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/services"

	"github.com/labstack/echo/v4"
)

// TaskHandlers handles credentialing task requests
type TaskHandlers struct {
	taskService services.TaskService
}

func NewTaskHandlers(taskService services.TaskService) *TaskHandlers {
	return &TaskHandlers{taskService: taskService}
}

func taskFilters(c echo.Context) (models.TaskFilters, error) {
	var filters models.TaskFilters
	var err error
	if filters.WorkflowID, err = common.ParseOptionalUUID(c.QueryParam("workflow_id"), "workflow_id"); err != nil {
		return filters, common.NewFieldError("workflow_id", err.Error())
	}
	if filters.ProviderID, err = common.ParseOptionalUUID(c.QueryParam("provider_id"), "provider_id"); err != nil {
		return filters, common.NewFieldError("provider_id", err.Error())
	}
	if filters.AssignedTo, err = common.ParseOptionalUUID(c.QueryParam("assigned_to"), "assigned_to"); err != nil {
		return filters, common.NewFieldError("assigned_to", err.Error())
	}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		filters.Status = &status
	}
	return filters, nil
}

// ListTasks godoc
// @Summary      List tasks with their workflow and provider, newest first
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        workflow_id query string false "workflow filter"
// @Param        provider_id query string false "provider filter"
// @Param        status      query string false "pending, in_progress, completed or rejected"
// @Param        assigned_to query string false "assignee filter"
// @Success      200 {array} models.Task
// @Router       /tasks [get]
func (h *TaskHandlers) ListTasks(c echo.Context) error {
	filters, err := taskFilters(c)
	if err != nil {
		return sendError(c, err)
	}

	tasks, err := h.taskService.List(c.Request().Context(), viewerID(c), filters)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// CreateTask godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body services.CreateTaskRequest true "task"
// @Success      201 {object} models.Task
// @Failure      400 {object} common.ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandlers) CreateTask(c echo.Context) error {
	var req services.CreateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.Create(c.Request().Context(), viewerID(c), &req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

// UpdateTask godoc
// @Summary      Patch a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "task id"
// @Param        request body services.UpdateTaskRequest true "changed fields"
// @Success      200 {object} models.Task
// @Failure      404 {object} common.ErrorResponse
// @Router       /tasks/{id} [patch]
func (h *TaskHandlers) UpdateTask(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req services.UpdateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.Update(c.Request().Context(), viewerID(c), id, &req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}
