package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gatehouse/identity-service/internal/core/domain"
	"github.com/gatehouse/identity-service/internal/core/ports"
)

// SessionAuth identifies callers from the session cookie, resolving the
// opaque token through the auth service.
type SessionAuth struct {
	auth     ports.AuthService
	cookie   string
	excluded []string
}

func (s *SessionAuth) RequiresAuth(path string) bool {
	return !pathExcluded(path, s.excluded)
}

func (s *SessionAuth) IdentifyCaller(c echo.Context) (*domain.User, error) {
	cookie, err := c.Cookie(s.cookie)
	if err != nil || cookie.Value == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session cookie")
	}

	user, err := s.auth.GetUserFromSession(c.Request().Context(), cookie.Value)
	if err != nil {
		return nil, err
	}
	return user, nil
}
