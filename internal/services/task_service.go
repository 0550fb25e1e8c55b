package services

import (
	"context"
	"strings"
	"time"

	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/repositories"

	"github.com/google/uuid"
)

type TaskService interface {
	List(ctx context.Context, viewerID *uuid.UUID, filters models.TaskFilters) ([]*models.Task, error)
	Create(ctx context.Context, actorID *uuid.UUID, req *CreateTaskRequest) (*models.Task, error)
	Update(ctx context.Context, actorID *uuid.UUID, id uuid.UUID, req *UpdateTaskRequest) (*models.Task, error)
}

type taskService struct {
	taskRepo repositories.TaskRepository
	effects  WriteEffects
	now      func() time.Time
}

func NewTaskService(taskRepo repositories.TaskRepository, effects WriteEffects) TaskService {
	return &taskService{taskRepo: taskRepo, effects: effects, now: time.Now}
}

type CreateTaskRequest struct {
	WorkflowID  string       `json:"workflow_id"`
	ProviderID  string       `json:"provider_id"`
	Title       string       `json:"title" validate:"required,max=300"`
	Description *string      `json:"description"`
	Status      string       `json:"status" validate:"omitempty,oneof=pending in_progress completed rejected"`
	Priority    string       `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate     *models.Date `json:"due_date"`
	AssignedTo  string       `json:"assigned_to"`
}

// UpdateTaskRequest is a partial update. Empty reference ids clear the
// reference.
type UpdateTaskRequest struct {
	WorkflowID  *string      `json:"workflow_id"`
	ProviderID  *string      `json:"provider_id"`
	Title       *string      `json:"title" validate:"omitempty,max=300"`
	Description *string      `json:"description"`
	Status      *string      `json:"status" validate:"omitempty,oneof=pending in_progress completed rejected"`
	Priority    *string      `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate     *models.Date `json:"due_date"`
	AssignedTo  *string      `json:"assigned_to"`
}

func (s *taskService) List(ctx context.Context, viewerID *uuid.UUID, filters models.TaskFilters) ([]*models.Task, error) {
	tasks, err := s.taskRepo.List(ctx, filters, viewerID)
	if isNotConfigured(err) {
		return []*models.Task{}, nil
	}
	return tasks, err
}

func (s *taskService) Create(ctx context.Context, actorID *uuid.UUID, req *CreateTaskRequest) (*models.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       req.Title,
		Description: blankToNil(req.Description),
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
	var err error
	if task.WorkflowID, err = optionalRef(req.WorkflowID, "workflow_id"); err != nil {
		return nil, err
	}
	if task.ProviderID, err = optionalRef(req.ProviderID, "provider_id"); err != nil {
		return nil, err
	}
	if task.AssignedTo, err = optionalRef(req.AssignedTo, "assigned_to"); err != nil {
		return nil, err
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	if task.Status == models.TaskStatusCompleted {
		now := s.now()
		task.CompletedAt = &now
	}
	if err := s.checkReferences(ctx, actorID, task.WorkflowID, task.ProviderID); err != nil {
		return nil, err
	}

	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	if orgID, ok := taskOrganization(created); ok {
		s.effects.created(ctx, orgID, "tasks", created.ID.String(), actorID, created)
	} else {
		s.effects.invalidateStats(ctx)
	}
	return created, nil
}

func (s *taskService) Update(ctx context.Context, actorID *uuid.UUID, id uuid.UUID, req *UpdateTaskRequest) (*models.Task, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	patch := &models.TaskPatch{
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
	var err error
	if patch.Title, err = nonBlank(req.Title, "title"); err != nil {
		return nil, err
	}
	if patch.WorkflowID, err = clearableRef(req.WorkflowID, "workflow_id"); err != nil {
		return nil, err
	}
	if patch.ProviderID, err = clearableRef(req.ProviderID, "provider_id"); err != nil {
		return nil, err
	}
	if patch.AssignedTo, err = clearableRef(req.AssignedTo, "assigned_to"); err != nil {
		return nil, err
	}
	if patch.Status != nil {
		// Any other status clears completed_at.
		completedAt := time.Time{}
		if *patch.Status == models.TaskStatusCompleted {
			completedAt = s.now()
		}
		patch.CompletedAt = &completedAt
	}
	if len(patch.Assignments()) == 0 {
		return nil, common.NewFieldError("body", "no fields to update")
	}
	if err := s.checkReferences(ctx, actorID, patch.WorkflowID, patch.ProviderID); err != nil {
		return nil, err
	}

	updated, err := s.taskRepo.Update(ctx, id, patch, actorID)
	if err != nil {
		return nil, err
	}
	if orgID, ok := taskOrganization(updated); ok {
		s.effects.updated(ctx, orgID, "tasks", updated.ID.String(), actorID, nil, patch)
	} else {
		s.effects.invalidateStats(ctx)
	}
	return updated, nil
}

// checkReferences keeps a signed-in user from attaching a task to another
// organization's workflow or provider. uuid.Nil clears a reference and is
// not checked.
func (s *taskService) checkReferences(ctx context.Context, actorID *uuid.UUID, workflowID, providerID *uuid.UUID) error {
	workflowID, providerID = setRef(workflowID), setRef(providerID)
	if actorID == nil || (workflowID == nil && providerID == nil) {
		return nil
	}
	return s.taskRepo.CheckReferences(ctx, *actorID, workflowID, providerID)
}

func setRef(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}

// taskOrganization derives a task's organization from its provider or
// workflow; tasks have no organization column of their own.
func taskOrganization(t *models.Task) (uuid.UUID, bool) {
	if t.Provider != nil {
		return t.Provider.OrganizationID, true
	}
	if t.Workflow != nil {
		return t.Workflow.OrganizationID, true
	}
	return uuid.Nil, false
}

func optionalRef(value, field string) (*uuid.UUID, error) {
	id, err := common.ParseOptionalUUID(value, field)
	if err != nil {
		return nil, common.NewFieldError(field, err.Error())
	}
	return id, nil
}

// clearableRef maps nil to "unchanged" and an empty string to uuid.Nil,
// which clears the column.
func clearableRef(value *string, field string) (*uuid.UUID, error) {
	if value == nil {
		return nil, nil
	}
	if strings.TrimSpace(*value) == "" {
		id := uuid.Nil
		return &id, nil
	}
	id, err := common.ValidateUUID(*value, field)
	if err != nil {
		return nil, common.NewFieldError(field, err.Error())
	}
	return &id, nil
}
