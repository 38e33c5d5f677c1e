package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gatehouse/identity-service/internal/api/metrics"
	"github.com/gatehouse/identity-service/internal/core/domain"
	"github.com/gatehouse/identity-service/internal/core/ports"
)

// AuthHandler exposes the auth flows over HTTP. Session tokens travel in a
// cookie; all other inputs are JSON bodies.
type AuthHandler struct {
	authService ports.AuthService
	cookieName  string
}

func NewAuthHandler(authService ports.AuthService, cookieName string) *AuthHandler {
	return &AuthHandler{authService: authService, cookieName: cookieName}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type updatePasswordRequest struct {
	ResetToken  string `json:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type messageResponse struct {
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

type resetTokenResponse struct {
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

// Welcome responds to GET / with a greeting; it doubles as the logout
// redirect target.
func (h *AuthHandler) Welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "welcome"})
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.authService.RegisterUser(c.Request().Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		} else {
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, messageResponse{Email: req.Email, Message: "user created"})
}

// Login validates credentials and opens a session.
//
// @Summary      Log in and receive a session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  map[string]string
// @Router       /sessions [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	ok, err := h.authService.ValidLogin(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, err := h.authService.CreateSession(ctx, req.Email)
	if err != nil {
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return c.JSON(http.StatusOK, messageResponse{Email: req.Email, Message: "logged in"})
}

// Logout destroys the session named by the request cookie.
//
// @Summary      Log out
// @Tags         auth
// @Success      303  {string}  string  "redirect to /"
// @Failure      403  {object}  map[string]string
// @Router       /sessions [delete]
func (h *AuthHandler) Logout(c echo.Context) error {
	user, err := h.sessionUser(c)
	if err != nil {
		return err
	}

	if err := h.authService.DestroySession(c.Request().Context(), user.ID); err != nil {
		return err
	}

	metrics.SessionsDestroyedTotal.Inc()
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.Redirect(http.StatusSeeOther, "/")
}

// Profile returns the email of the session's owner.
//
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	user, err := h.sessionUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"email": user.Email})
}

// RequestReset issues a single-use password-reset token.
//
// @Summary      Request a password-reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetRequest  true  "Account email"
// @Success      200   {object}  resetTokenResponse
// @Failure      403   {object}  map[string]string
// @Router       /reset_password [post]
func (h *AuthHandler) RequestReset(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.authService.GetResetToken(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("requested").Inc()
	return c.JSON(http.StatusOK, resetTokenResponse{Email: req.Email, ResetToken: token})
}

// UpdatePassword consumes a reset token and sets a new password.
//
// @Summary      Update password with a reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      updatePasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  map[string]string
// @Router       /reset_password [put]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.UpdatePassword(c.Request().Context(), req.ResetToken, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrInvalidResetToken) {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("completed").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

// sessionUser resolves the request's session cookie to its owner, or a 403
// when there is no valid session.
func (h *AuthHandler) sessionUser(c echo.Context) (*domain.User, error) {
	cookie, err := c.Cookie(h.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}

	user, err := h.authService.GetUserFromSession(c.Request().Context(), cookie.Value)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return user, nil
}
