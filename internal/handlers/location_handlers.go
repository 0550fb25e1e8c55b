package handlers

import (
	"net/http"

	"credhub/internal/common"
	"credhub/internal/services"

	"github.com/labstack/echo/v4"
)

// LocationHandlers handles facility location requests
type LocationHandlers struct {
	locationService services.LocationService
}

func NewLocationHandlers(locationService services.LocationService) *LocationHandlers {
	return &LocationHandlers{locationService: locationService}
}

// ListLocations godoc
// @Summary      List locations by name
// @Tags         locations
// @Produce      json
// @Security     BearerAuth
// @Param        organization_id query string false "organization filter"
// @Success      200 {array} models.Location
// @Router       /locations [get]
func (h *LocationHandlers) ListLocations(c echo.Context) error {
	orgID, err := requestedOrganization(c)
	if err != nil {
		return common.SendValidationError(c, "organization_id", err.Error())
	}

	locations, err := h.locationService.List(c.Request().Context(), viewerID(c), orgID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, locations)
}

// CreateLocation godoc
// @Summary      Create a location
// @Tags         locations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body services.CreateLocationRequest true "location"
// @Success      201 {object} models.Location
// @Failure      400 {object} common.ErrorResponse
// @Failure      422 {object} common.ErrorResponse
// @Router       /locations [post]
func (h *LocationHandlers) CreateLocation(c echo.Context) error {
	var req services.CreateLocationRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	req.OrganizationID = organizationFallback(c, req.OrganizationID)

	location, err := h.locationService.Create(c.Request().Context(), viewerID(c), &req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusCreated, location)
}
