package services

import (
	"context"

	"credhub/internal/common"
	"credhub/internal/models"

	"github.com/google/uuid"
)

type SetupService interface {
	// Run creates the organization with the caller as admin, then the
	// optional first location and first provider. On a later step's failure
	// the result holds what was already created.
	Run(ctx context.Context, userID uuid.UUID, req *SetupRequest) (*SetupResult, error)
}

type SetupRequest struct {
	Organization CreateOrganizationRequest `json:"organization"`
	Location     *SetupLocation           `json:"location,omitempty"`
	Provider     *SetupProvider           `json:"provider,omitempty"`
}

type SetupLocation struct {
	Name        string  `json:"name"`
	Address     *string `json:"address"`
	Departments int     `json:"departments"`
}

type SetupProvider struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Specialty *string `json:"specialty"`
}

type SetupResult struct {
	Organization *models.Organization `json:"organization"`
	Membership   *models.Membership   `json:"membership"`
	Location     *models.Location     `json:"location,omitempty"`
	Provider     *models.Provider     `json:"provider,omitempty"`
}

type setupService struct {
	orgs      OrganizationService
	locations LocationService
	providers ProviderService
}

func NewSetupService(orgs OrganizationService, locations LocationService, providers ProviderService) SetupService {
	return &setupService{orgs: orgs, locations: locations, providers: providers}
}

func (s *setupService) Run(ctx context.Context, userID uuid.UUID, req *SetupRequest) (*SetupResult, error) {
	if userID == uuid.Nil {
		return nil, common.NewFieldError("user_id", "setup requires a signed-in user")
	}

	org, membership, err := s.orgs.CreateWithAdmin(ctx, userID, &req.Organization)
	if err != nil {
		return nil, err
	}
	result := &SetupResult{Organization: org, Membership: membership}
	orgID := org.ID.String()

	if req.Location != nil {
		departments := req.Location.Departments
		if departments <= 0 {
			departments = 1
		}
		result.Location, err = s.locations.Create(ctx, &userID, &CreateLocationRequest{
			OrganizationID: orgID,
			Name:           req.Location.Name,
			Address:        req.Location.Address,
			Departments:    departments,
			Status:         models.LocationStatusActive,
		})
		if err != nil {
			return result, err
		}
	}

	if req.Provider != nil {
		providerReq := &CreateProviderRequest{
			OrganizationID: orgID,
			FirstName:      req.Provider.FirstName,
			LastName:       req.Provider.LastName,
			Email:          req.Provider.Email,
			Phone:          req.Provider.Phone,
			Specialty:      req.Provider.Specialty,
			Status:         models.ProviderStatusPending,
		}
		if result.Location != nil {
			providerReq.LocationID = result.Location.ID.String()
		}
		result.Provider, err = s.providers.Create(ctx, &userID, providerReq)
		if err != nil {
			return result, err
		}
	}

	return result, nil
}
