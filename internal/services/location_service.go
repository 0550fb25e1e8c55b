package services

import (
	"context"
	"strings"

	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/repositories"

	"github.com/google/uuid"
)

type LocationService interface {
	List(ctx context.Context, viewerID, organizationID *uuid.UUID) ([]*models.Location, error)
	Create(ctx context.Context, actorID *uuid.UUID, req *CreateLocationRequest) (*models.Location, error)
}

type locationService struct {
	locationRepo repositories.LocationRepository
	orgs         OrganizationService
	effects      WriteEffects
}

func NewLocationService(locationRepo repositories.LocationRepository, orgs OrganizationService, effects WriteEffects) LocationService {
	return &locationService{locationRepo: locationRepo, orgs: orgs, effects: effects}
}

type CreateLocationRequest struct {
	OrganizationID string  `json:"organization_id"`
	Name           string  `json:"name" validate:"required,max=200"`
	Address        *string `json:"address"`
	Departments    int     `json:"departments" validate:"omitempty,gt=0"`
	Status         string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (s *locationService) List(ctx context.Context, viewerID, organizationID *uuid.UUID) ([]*models.Location, error) {
	locations, err := s.locationRepo.List(ctx, models.Scope{OrganizationID: organizationID, ViewerID: viewerID})
	if isNotConfigured(err) {
		return []*models.Location{}, nil
	}
	return locations, err
}

func (s *locationService) Create(ctx context.Context, actorID *uuid.UUID, req *CreateLocationRequest) (*models.Location, error) {
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

	location := &models.Location{
		OrganizationID: orgID,
		Name:           req.Name,
		Address:        blankToNil(req.Address),
		Departments:    req.Departments,
		Status:         req.Status,
	}
	if location.Departments == 0 {
		location.Departments = 1
	}
	if location.Status == "" {
		location.Status = models.LocationStatusActive
	}

	created, err := s.locationRepo.Create(ctx, location)
	if err != nil {
		return nil, err
	}
	s.effects.created(ctx, orgID, "locations", created.ID.String(), actorID, created)
	return created, nil
}
