package handlers

import (
	"net/http"

	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OrganizationHandlers serves organizations, memberships and the setup wizard.
type OrganizationHandlers struct {
	orgService   services.OrganizationService
	setupService services.SetupService
	logger       *zap.Logger
}

func NewOrganizationHandlers(orgService services.OrganizationService, setupService services.SetupService, logger *zap.Logger) *OrganizationHandlers {
	return &OrganizationHandlers{orgService: orgService, setupService: setupService, logger: logger}
}

// OrganizationResponse pairs a new organization with the caller's membership.
type OrganizationResponse struct {
	Organization *models.Organization `json:"organization"`
	Membership   *models.Membership   `json:"membership"`
}

// ListOrganizations godoc
// @Summary      Organizations the caller belongs to
// @Tags         organizations
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} models.Organization
// @Router       /organizations [get]
func (h *OrganizationHandlers) ListOrganizations(c echo.Context) error {
	orgs, err := h.orgService.List(c.Request().Context(), viewerID(c))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, orgs)
}

// CreateOrganization godoc
// @Summary      Create an organization with the caller as admin
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body services.CreateOrganizationRequest true "organization"
// @Success      201 {object} OrganizationResponse
// @Failure      400 {object} common.ErrorResponse
// @Router       /organizations [post]
func (h *OrganizationHandlers) CreateOrganization(c echo.Context) error {
	userID := viewerID(c)
	if userID == nil {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreateOrganizationRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	org, membership, err := h.orgService.CreateWithAdmin(c.Request().Context(), *userID, &req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusCreated, OrganizationResponse{Organization: org, Membership: membership})
}

// CreateMembership godoc
// @Summary      Add a user to an organization
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body services.CreateMembershipRequest true "membership"
// @Success      201 {object} models.Membership
// @Failure      403 {object} common.ErrorResponse
// @Router       /memberships [post]
func (h *OrganizationHandlers) CreateMembership(c echo.Context) error {
	var req services.CreateMembershipRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	// Admins can only add members to the organization they act in.
	if orgID, ok := common.GetOrganizationIDFromContext(c.Request().Context()); ok && req.OrganizationID != orgID {
		return common.SendForbiddenError(c, "Memberships can only be added to the current organization")
	}

	membership, err := h.orgService.CreateMembership(c.Request().Context(), &req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusCreated, membership)
}

// RunSetup godoc
// @Summary      First-run setup wizard
// @Description  Creates the organization, then the optional first location and provider.
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body services.SetupRequest true "wizard steps"
// @Success      201 {object} services.SetupResult
// @Failure      400 {object} common.ErrorResponse
// @Router       /setup [post]
func (h *OrganizationHandlers) RunSetup(c echo.Context) error {
	userID := viewerID(c)
	if userID == nil {
		return common.SendUnauthorizedError(c)
	}

	var req services.SetupRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	result, err := h.setupService.Run(c.Request().Context(), *userID, &req)
	if err != nil {
		if result != nil && result.Organization != nil {
			h.logger.Warn("setup finished partially",
				zap.String("organization_id", result.Organization.ID.String()), zap.Error(err))
			return c.JSON(http.StatusMultiStatus, map[string]interface{}{
				"result": result,
				"error":  err.Error(),
			})
		}
		return sendError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}
