package middleware

import (
	"errors"
	"fmt"
	"time"

	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/services"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionContextKey is the echo context key holding the caller's *models.Session.
const SessionContextKey = "session"

// externalClaims are the claims read from tokens signed by the JWKS issuer.
type externalClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewJWKSKeyfunc fetches the key set at url and keeps it refreshed in the
// background. The returned stop function ends the refresh goroutine.
func NewJWKSKeyfunc(url string, logger *zap.Logger) (jwt.Keyfunc, func(), error) {
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("jwks refresh failed", zap.String("url", url), zap.Error(err))
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load JWKS: %w", err)
	}
	return jwks.Keyfunc, jwks.EndBackground, nil
}

// JWTConfig validates bearer tokens through the auth service. When external
// is non-nil, tokens the auth service does not recognize are verified against
// it instead.
func JWTConfig(auth services.AuthService, external jwt.Keyfunc, logger *zap.Logger) echojwt.Config {
	return echojwt.Config{
		ContextKey: SessionContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			session, err := auth.GetSession(c.Request().Context(), token)
			if err == nil && session != nil {
				return session, nil
			}
			if external != nil && errors.Is(err, services.ErrInvalidToken) {
				return parseExternal(token, external)
			}
			if err == nil {
				err = services.ErrInvalidToken
			}
			return nil, err
		},
		SuccessHandler: func(c echo.Context) {
			session, ok := c.Get(SessionContextKey).(*models.Session)
			if !ok {
				return
			}
			ctx := common.WithUserID(c.Request().Context(), session.UserID)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logger.Debug("rejected bearer token", zap.String("path", c.Path()), zap.Error(err))
			return common.SendUnauthorizedError(c)
		},
	}
}

func parseExternal(token string, external jwt.Keyfunc) (*models.Session, error) {
	claims := &externalClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, external)
	if err != nil || !parsed.Valid {
		return nil, services.ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, services.ErrInvalidToken
	}

	session := &models.Session{
		AccessToken: token,
		TokenType:   "Bearer",
		SessionID:   claims.ID,
		UserID:      userID,
		Email:       claims.Email,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// SessionFromContext returns the session stored by the JWT middleware.
func SessionFromContext(c echo.Context) (*models.Session, bool) {
	session, ok := c.Get(SessionContextKey).(*models.Session)
	return session, ok
}
