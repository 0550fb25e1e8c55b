package handlers

import (
	"errors"
	"net/http"
	"strings"

	"credhub/internal/common"
	"credhub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// sendError maps a service error onto the JSON error envelope.
func sendError(c echo.Context, err error) error {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		return common.SendValidationErrors(c, verr)
	}
	if errors.Is(err, common.ErrNotConfigured) {
		return common.SendNotConfiguredError(c)
	}
	if errors.Is(err, common.ErrForbidden) {
		return common.SendForbiddenError(c, err.Error())
	}
	if errors.Is(err, services.ErrStorageNotConfigured) {
		return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse("STORAGE_NOT_CONFIGURED", err.Error(), nil))
	}
	if common.IsTimeout(err) {
		return c.JSON(http.StatusGatewayTimeout, common.CreateErrorResponse("TIMEOUT", err.Error(), nil))
	}

	if qe, ok := common.AsQueryError(err); ok {
		details := map[string]string{}
		if qe.Code != "" {
			details["code"] = qe.Code
		}
		if len(details) == 0 {
			details = nil
		}
		switch qe.Kind {
		case common.QueryKindNotFound:
			return c.JSON(http.StatusNotFound, common.CreateErrorResponse("NOT_FOUND", qe.Message, details))
		case common.QueryKindConflict:
			return c.JSON(http.StatusConflict, common.CreateErrorResponse("CONFLICT", qe.Message, details))
		case common.QueryKindInvalid:
			return c.JSON(http.StatusUnprocessableEntity, common.CreateErrorResponse("INVALID", qe.Message, details))
		case common.QueryKindUnavailable:
			return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse("UNAVAILABLE", qe.Message, details))
		default:
			return c.JSON(http.StatusInternalServerError, common.CreateErrorResponse("QUERY_ERROR", qe.Message, details))
		}
	}

	return common.SendServerError(c, err.Error())
}

// bindJSON decodes the request body, answering 400 on malformed input.
func bindJSON(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	return nil
}

// viewerID returns the authenticated user, or nil for anonymous calls.
func viewerID(c echo.Context) *uuid.UUID {
	if id, ok := common.GetUserIDFromContext(c.Request().Context()); ok {
		return &id
	}
	return nil
}

// requestedOrganization reads the organization filter from the query string,
// then the organization header. The placeholder id counts as absent.
func requestedOrganization(c echo.Context) (*uuid.UUID, error) {
	raw := c.QueryParam("organization_id")
	if strings.TrimSpace(raw) == "" {
		raw = c.Request().Header.Get("X-Organization-ID")
	}
	return common.ParseOptionalUUID(raw, "organization_id")
}

// organizationFallback returns body when set, otherwise the organization the
// membership middleware resolved.
func organizationFallback(c echo.Context, body string) string {
	if strings.TrimSpace(body) != "" && body != common.PlaceholderOrganizationID {
		return body
	}
	if id, ok := common.GetOrganizationIDFromContext(c.Request().Context()); ok {
		return id.String()
	}
	return body
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	return common.ValidateUUID(c.Param(name), name)
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}
