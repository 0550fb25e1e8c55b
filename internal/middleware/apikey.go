package middleware

import (
	"crypto/subtle"
	"net/http"

	"credhub/internal/common"

	"github.com/labstack/echo/v4"
)

// APIKeyHeader carries the public key every API call must present.
const APIKeyHeader = "apikey"

// RequireAPIKey rejects requests whose apikey header does not match key. An
// empty key disables the check so an unconfigured server can still report
// NOT_CONFIGURED.
func RequireAPIKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return next(c)
			}
			presented := c.Request().Header.Get(APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("INVALID_API_KEY", "Invalid API key", nil))
			}
			return next(c)
		}
	}
}
