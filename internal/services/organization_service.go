package services

import (
	"context"
	"fmt"
	"strings"

	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrganizationService interface {
	Create(ctx context.Context, req *CreateOrganizationRequest) (*models.Organization, error)
	// CreateWithAdmin creates the organization and the caller's admin
	// membership in one transaction.
	CreateWithAdmin(ctx context.Context, userID uuid.UUID, req *CreateOrganizationRequest) (*models.Organization, *models.Membership, error)
	List(ctx context.Context, viewerID *uuid.UUID) ([]*models.Organization, error)
	CreateMembership(ctx context.Context, req *CreateMembershipRequest) (*models.Membership, error)
	// HasUserOrganizations reports false without error for a missing user or
	// an unconfigured store.
	HasUserOrganizations(ctx context.Context, userID *uuid.UUID) (bool, error)
	// ResolveOrganizationID returns requested when set, otherwise the
	// organization of the user's first membership. A signed-in user must be a
	// member of requested.
	ResolveOrganizationID(ctx context.Context, userID *uuid.UUID, requested *uuid.UUID) (uuid.UUID, error)
	// MembershipFor returns the user's membership in organizationID, or the
	// first membership when organizationID is nil.
	MembershipFor(ctx context.Context, userID uuid.UUID, organizationID *uuid.UUID) (*models.Membership, error)
}

// OrgTx runs fn with organization and membership repositories bound to a
// single transaction.
type OrgTx func(ctx context.Context, fn func(orgs repositories.OrganizationRepository, members repositories.MembershipRepository) error) error

func NewOrgTx(db repositories.DBTX) OrgTx {
	return func(ctx context.Context, fn func(repositories.OrganizationRepository, repositories.MembershipRepository) error) error {
		return repositories.RunInTx(ctx, db, func(tx repositories.DBTX) error {
			return fn(repositories.NewOrganizationRepo(tx), repositories.NewMembershipRepo(tx))
		})
	}
}

type organizationService struct {
	orgRepo    repositories.OrganizationRepository
	memberRepo repositories.MembershipRepository
	inTx       OrgTx
	logger     *zap.Logger
}

func NewOrganizationService(orgRepo repositories.OrganizationRepository, memberRepo repositories.MembershipRepository, inTx OrgTx, logger *zap.Logger) OrganizationService {
	return &organizationService{orgRepo: orgRepo, memberRepo: memberRepo, inTx: inTx, logger: logger}
}

type CreateOrganizationRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
}

type CreateMembershipRequest struct {
	UserID         uuid.UUID `json:"user_id" validate:"required"`
	OrganizationID uuid.UUID `json:"organization_id" validate:"required"`
	Role           string    `json:"role" validate:"omitempty,oneof=admin manager user"`
}

func (req *CreateOrganizationRequest) toModel() (*models.Organization, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, common.NewFieldError("name", "Organization name is required")
	}
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	return &models.Organization{
		Name:    req.Name,
		Address: blankToNil(req.Address),
		Phone:   blankToNil(req.Phone),
		Email:   blankToNil(req.Email),
	}, nil
}

func (s *organizationService) Create(ctx context.Context, req *CreateOrganizationRequest) (*models.Organization, error) {
	org, err := req.toModel()
	if err != nil {
		return nil, err
	}
	return s.orgRepo.Create(ctx, org)
}

func (s *organizationService) CreateWithAdmin(ctx context.Context, userID uuid.UUID, req *CreateOrganizationRequest) (*models.Organization, *models.Membership, error) {
	org, err := req.toModel()
	if err != nil {
		return nil, nil, err
	}

	var created *models.Organization
	var membership *models.Membership
	err = s.inTx(ctx, func(orgs repositories.OrganizationRepository, members repositories.MembershipRepository) error {
		var err error
		if created, err = orgs.Create(ctx, org); err != nil {
			return err
		}
		membership, err = members.Create(ctx, &models.Membership{
			UserID:         userID,
			OrganizationID: created.ID,
			Role:           models.RoleAdmin,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("organization created",
		zap.String("organization_id", created.ID.String()),
		zap.String("admin_user_id", userID.String()))
	return created, membership, nil
}

func (s *organizationService) List(ctx context.Context, viewerID *uuid.UUID) ([]*models.Organization, error) {
	orgs, err := s.orgRepo.List(ctx, viewerID)
	if isNotConfigured(err) {
		return []*models.Organization{}, nil
	}
	return orgs, err
}

func (s *organizationService) CreateMembership(ctx context.Context, req *CreateMembershipRequest) (*models.Membership, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	return s.memberRepo.Create(ctx, &models.Membership{
		UserID:         req.UserID,
		OrganizationID: req.OrganizationID,
		Role:           role,
	})
}

func (s *organizationService) HasUserOrganizations(ctx context.Context, userID *uuid.UUID) (bool, error) {
	if userID == nil {
		return false, nil
	}
	exists, err := s.memberRepo.ExistsForUser(ctx, *userID)
	if err != nil {
		if isNotConfigured(err) {
			return false, nil
		}
		s.logger.Warn("organization check failed", zap.String("user_id", userID.String()), zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (s *organizationService) ResolveOrganizationID(ctx context.Context, userID *uuid.UUID, requested *uuid.UUID) (uuid.UUID, error) {
	if requested != nil && *requested != uuid.Nil {
		if userID == nil {
			return *requested, nil
		}
		if _, err := s.memberRepo.Get(ctx, *userID, *requested); err != nil {
			if common.IsNotFound(err) {
				return uuid.Nil, fmt.Errorf("%w %s", common.ErrForbidden, requested.String())
			}
			return uuid.Nil, err
		}
		return *requested, nil
	}
	if userID == nil {
		return uuid.Nil, common.NewQueryError("resolve organization", common.QueryKindInvalid,
			"organization_id is required when no user is signed in")
	}

	membership, err := s.memberRepo.FirstForUser(ctx, *userID)
	if err != nil {
		if common.IsNotFound(err) {
			return uuid.Nil, common.NewQueryError("resolve organization", common.QueryKindInvalid,
				"user %s does not belong to any organization", userID.String())
		}
		return uuid.Nil, err
	}
	return membership.OrganizationID, nil
}

func (s *organizationService) MembershipFor(ctx context.Context, userID uuid.UUID, organizationID *uuid.UUID) (*models.Membership, error) {
	if organizationID != nil {
		return s.memberRepo.Get(ctx, userID, *organizationID)
	}
	return s.memberRepo.FirstForUser(ctx, userID)
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	return common.StringPtr(strings.TrimSpace(*s))
}
