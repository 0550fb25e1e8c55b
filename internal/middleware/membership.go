package middleware

import (
	"errors"
	"net/http"
	"slices"

	"credhub/internal/common"
	"credhub/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OrganizationHeader selects which of the caller's organizations a request
// acts in.
const OrganizationHeader = "X-Organization-ID"

type MembershipMiddleware struct {
	orgs   services.OrganizationService
	logger *zap.Logger
}

func NewMembershipMiddleware(orgs services.OrganizationService, logger *zap.Logger) *MembershipMiddleware {
	return &MembershipMiddleware{orgs: orgs, logger: logger}
}

// LoadMembership stores the caller's organization and role in the request
// context. Without the header the first membership is used; a caller with no
// membership passes through unscoped.
func (m *MembershipMiddleware) LoadMembership() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			userID, ok := common.GetUserIDFromContext(ctx)
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			requested, err := common.ParseOptionalUUID(c.Request().Header.Get(OrganizationHeader), OrganizationHeader)
			if err != nil {
				return common.SendValidationError(c, OrganizationHeader, err.Error())
			}

			membership, err := m.orgs.MembershipFor(ctx, userID, requested)
			switch {
			case err == nil:
				ctx = common.WithMembership(ctx, membership.OrganizationID, membership.Role)
				c.SetRequest(c.Request().WithContext(ctx))
			case errors.Is(err, common.ErrNotConfigured):
			case common.IsNotFound(err):
				if requested != nil {
					return common.SendForbiddenError(c, "Not a member of this organization")
				}
			default:
				m.logger.Error("membership lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
				return common.SendServerError(c, "Error checking membership")
			}

			return next(c)
		}
	}
}

// RequireRole admits callers whose membership role is one of roles.
func (m *MembershipMiddleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return c.JSON(http.StatusForbidden, common.CreateErrorResponse("FORBIDDEN", "Organization membership required", nil))
			}
			if !slices.Contains(roles, role) {
				return common.SendForbiddenError(c, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
