package handlers

import (
	"errors"
	"net/http"

	"credhub/internal/common"
	"credhub/internal/services"
	"credhub/internal/session"

	"github.com/labstack/echo/v4"
)

// AuthHandlers serves sign-up, sign-in, sign-out, session lookup and the
// session-gate state.
type AuthHandlers struct {
	authService services.AuthService
	evaluator   *session.Evaluator
}

func NewAuthHandlers(authService services.AuthService, evaluator *session.Evaluator) *AuthHandlers {
	return &AuthHandlers{authService: authService, evaluator: evaluator}
}

// SignInRequest is the password sign-in payload.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp godoc
// @Summary      Register a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body services.SignUpRequest true "credentials"
// @Success      201 {object} services.SignUpResult
// @Failure      400 {object} common.ErrorResponse
// @Failure      409 {object} common.ErrorResponse
// @Router       /auth/signup [post]
func (h *AuthHandlers) SignUp(c echo.Context) error {
	var req services.SignUpRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	result, err := h.authService.SignUp(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrUserAlreadyExists) {
			return c.JSON(http.StatusConflict, common.CreateErrorResponse("USER_EXISTS", err.Error(), nil))
		}
		return sendError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// SignIn godoc
// @Summary      Sign in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignInRequest true "credentials"
// @Success      200 {object} models.Session
// @Failure      401 {object} common.ErrorResponse
// @Failure      429 {object} common.ErrorResponse
// @Router       /auth/signin [post]
func (h *AuthHandlers) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	sess, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, sess)
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("INVALID_CREDENTIALS", err.Error(), nil))
	case errors.Is(err, services.ErrTooManyAttempts):
		return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", err.Error(), nil))
	default:
		return sendError(c, err)
	}
}

// SignOut godoc
// @Summary      End the current session
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401 {object} common.ErrorResponse
// @Router       /auth/signout [post]
func (h *AuthHandlers) SignOut(c echo.Context) error {
	token := bearerToken(c)
	if token == "" {
		return common.SendUnauthorizedError(c)
	}
	if err := h.authService.SignOut(c.Request().Context(), token); err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return common.SendUnauthorizedError(c)
		}
		return sendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetSession godoc
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} models.Session
// @Failure      401 {object} common.ErrorResponse
// @Router       /auth/session [get]
func (h *AuthHandlers) GetSession(c echo.Context) error {
	sess, err := h.authService.GetSession(c.Request().Context(), bearerToken(c))
	if err != nil && !errors.Is(err, services.ErrInvalidToken) {
		return sendError(c, err)
	}
	if sess == nil {
		return common.SendUnauthorizedError(c)
	}
	return c.JSON(http.StatusOK, sess)
}

// SessionState godoc
// @Summary      Which screen the dashboard should show
// @Description  One of initializing, needs_database_config, needs_auth, needs_org_setup, ready.
// @Tags         auth
// @Produce      json
// @Success      200 {object} session.Snapshot
// @Router       /session/state [get]
func (h *AuthHandlers) SessionState(c echo.Context) error {
	return c.JSON(http.StatusOK, h.evaluator.Evaluate(c.Request().Context(), bearerToken(c)))
}
