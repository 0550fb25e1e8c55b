package services

import (
	"context"
	"strings"

	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/repositories"

	"github.com/google/uuid"
)

type ProviderService interface {
	List(ctx context.Context, viewerID, organizationID *uuid.UUID) ([]*models.Provider, error)
	Create(ctx context.Context, actorID *uuid.UUID, req *CreateProviderRequest) (*models.Provider, error)
	Update(ctx context.Context, actorID *uuid.UUID, id uuid.UUID, req *UpdateProviderRequest) (*models.Provider, error)
}

type providerService struct {
	providerRepo repositories.ProviderRepository
	orgs         OrganizationService
	effects      WriteEffects
}

func NewProviderService(providerRepo repositories.ProviderRepository, orgs OrganizationService, effects WriteEffects) ProviderService {
	return &providerService{providerRepo: providerRepo, orgs: orgs, effects: effects}
}

type CreateProviderRequest struct {
	OrganizationID string       `json:"organization_id"`
	LocationID     string       `json:"location_id"`
	FirstName      string       `json:"first_name" validate:"required,max=100"`
	LastName       string       `json:"last_name" validate:"required,max=100"`
	Email          *string      `json:"email" validate:"omitempty,email"`
	Phone          *string      `json:"phone"`
	Specialty      *string      `json:"specialty"`
	LicenseNumber  *string      `json:"license_number"`
	LicenseExpiry  *models.Date `json:"license_expiry"`
	Status         string       `json:"status" validate:"omitempty,oneof=active pending expired suspended"`
}

// UpdateProviderRequest is a partial update. An empty location_id, contact
// field, license number or license_expiry clears that column.
type UpdateProviderRequest struct {
	LocationID    *string      `json:"location_id"`
	FirstName     *string      `json:"first_name" validate:"omitempty,max=100"`
	LastName      *string      `json:"last_name" validate:"omitempty,max=100"`
	Email         *string      `json:"email" validate:"omitempty,email"`
	Phone         *string      `json:"phone"`
	Specialty     *string      `json:"specialty"`
	LicenseNumber *string      `json:"license_number"`
	LicenseExpiry *models.Date `json:"license_expiry"`
	Status        *string      `json:"status" validate:"omitempty,oneof=active pending expired suspended"`
}

func (req *UpdateProviderRequest) toPatch() (*models.ProviderPatch, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	patch := &models.ProviderPatch{
		Email:         trimmed(req.Email),
		Phone:         trimmed(req.Phone),
		Specialty:     trimmed(req.Specialty),
		LicenseNumber: trimmed(req.LicenseNumber),
		LicenseExpiry: req.LicenseExpiry,
		Status:        req.Status,
	}
	var err error
	if patch.FirstName, err = nonBlank(req.FirstName, "first_name"); err != nil {
		return nil, err
	}
	if patch.LastName, err = nonBlank(req.LastName, "last_name"); err != nil {
		return nil, err
	}
	if req.LocationID != nil {
		id := uuid.Nil
		if strings.TrimSpace(*req.LocationID) != "" {
			parsed, err := common.ValidateUUID(*req.LocationID, "location_id")
			if err != nil {
				return nil, common.NewFieldError("location_id", err.Error())
			}
			id = parsed
		}
		patch.LocationID = &id
	}
	if len(patch.Assignments()) == 0 {
		return nil, common.NewFieldError("body", "no fields to update")
	}
	return patch, nil
}

// trimmed keeps nil as "unchanged"; a blank value becomes "" and clears the
// column.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func nonBlank(s *string, field string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil, common.NewFieldError(field, field+" cannot be blank")
	}
	return &trimmed, nil
}

func (s *providerService) List(ctx context.Context, viewerID, organizationID *uuid.UUID) ([]*models.Provider, error) {
	providers, err := s.providerRepo.List(ctx, models.Scope{OrganizationID: organizationID, ViewerID: viewerID})
	if isNotConfigured(err) {
		return []*models.Provider{}, nil
	}
	return providers, err
}

func (s *providerService) Create(ctx context.Context, actorID *uuid.UUID, req *CreateProviderRequest) (*models.Provider, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	requested, err := common.ParseOptionalUUID(req.OrganizationID, "organization_id")
	if err != nil {
		return nil, common.NewFieldError("organization_id", err.Error())
	}
	locationID, err := common.ParseOptionalUUID(req.LocationID, "location_id")
	if err != nil {
		return nil, common.NewFieldError("location_id", err.Error())
	}
	orgID, err := s.orgs.ResolveOrganizationID(ctx, actorID, requested)
	if err != nil {
		return nil, err
	}

	provider := &models.Provider{
		OrganizationID: orgID,
		LocationID:     locationID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          blankToNil(req.Email),
		Phone:          blankToNil(req.Phone),
		Specialty:      blankToNil(req.Specialty),
		LicenseNumber:  blankToNil(req.LicenseNumber),
		LicenseExpiry:  req.LicenseExpiry,
		Status:         req.Status,
	}
	if provider.Status == "" {
		provider.Status = models.ProviderStatusPending
	}

	created, err := s.providerRepo.Create(ctx, provider)
	if err != nil {
		return nil, err
	}
	s.effects.created(ctx, orgID, "providers", created.ID.String(), actorID, created)
	return created, nil
}

func (s *providerService) Update(ctx context.Context, actorID *uuid.UUID, id uuid.UUID, req *UpdateProviderRequest) (*models.Provider, error) {
	patch, err := req.toPatch()
	if err != nil {
		return nil, err
	}
	updated, err := s.providerRepo.Update(ctx, id, patch, actorID)
	if err != nil {
		return nil, err
	}
	s.effects.updated(ctx, updated.OrganizationID, "providers", updated.ID.String(), actorID, nil, patch)
	return updated, nil
}
