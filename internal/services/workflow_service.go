package services

import (
	"context"
	"strings"

	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/repositories"

	"github.com/google/uuid"
)

type WorkflowService interface {
	List(ctx context.Context, viewerID, organizationID *uuid.UUID) ([]*models.Workflow, error)
	Create(ctx context.Context, actorID *uuid.UUID, req *CreateWorkflowRequest) (*models.Workflow, error)
}

type workflowService struct {
	workflowRepo repositories.WorkflowRepository
	orgs         OrganizationService
	effects      WriteEffects
}

func NewWorkflowService(workflowRepo repositories.WorkflowRepository, orgs OrganizationService, effects WriteEffects) WorkflowService {
	return &workflowService{workflowRepo: workflowRepo, orgs: orgs, effects: effects}
}

type CreateWorkflowRequest struct {
	OrganizationID string                `json:"organization_id"`
	Name           string                `json:"name" validate:"required,max=200"`
	Description    *string               `json:"description"`
	Type           string                `json:"type" validate:"required,oneof=credentialing renewal compliance"`
	Status         string                `json:"status" validate:"omitempty,oneof=active draft archived"`
	Steps          []models.WorkflowStep `json:"steps"`
}

func (s *workflowService) List(ctx context.Context, viewerID, organizationID *uuid.UUID) ([]*models.Workflow, error) {
	workflows, err := s.workflowRepo.List(ctx, models.Scope{OrganizationID: organizationID, ViewerID: viewerID})
	if isNotConfigured(err) {
		return []*models.Workflow{}, nil
	}
	return workflows, err
}

func (s *workflowService) Create(ctx context.Context, actorID *uuid.UUID, req *CreateWorkflowRequest) (*models.Workflow, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	requested, err := common.ParseOptionalUUID(req.OrganizationID, "organization_id")
	if err != nil {
		return nil, common.NewFieldError("organization_id", err.Error())
	}
	orgID, err := s.orgs.ResolveOrganizationID(ctx, actorID, requested)
	if err != nil {
		return nil, err
	}

	workflow := &models.Workflow{
		OrganizationID: orgID,
		Name:           req.Name,
		Description:    blankToNil(req.Description),
		Type:           req.Type,
		Status:         req.Status,
		Steps:          req.Steps,
		CreatedBy:      actorID,
	}
	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusDraft
	}
	if workflow.Steps == nil {
		workflow.Steps = []models.WorkflowStep{}
	}

	created, err := s.workflowRepo.Create(ctx, workflow)
	if err != nil {
		return nil, err
	}
	s.effects.created(ctx, orgID, "workflows", created.ID.String(), actorID, created)
	return created, nil
}
