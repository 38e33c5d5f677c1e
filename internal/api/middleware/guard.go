// Package middleware provides the request guard: a pluggable capability
// deciding which paths need authentication and who the caller is. The
// variant (none, basic, session) is selected by configuration.
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gatehouse/identity-service/internal/core/domain"
	"github.com/gatehouse/identity-service/internal/core/ports"
)

// ContextUserKey is where RequireUser stores the identified caller on the
// echo context.
const ContextUserKey = "auth_user"

// Guard is the authentication capability consulted on every request.
type Guard interface {
	// RequiresAuth reports whether the request path is protected.
	RequiresAuth(path string) bool

	// IdentifyCaller resolves the authenticated user for the request.
	// A non-nil error means the request carried no usable credentials
	// (HTTP 401); (nil, nil) means credentials were presented but match
	// no user (HTTP 403).
	IdentifyCaller(c echo.Context) (*domain.User, error)
}

// NewGuard builds the guard variant named by mode: "none", "basic", or
// "session".
func NewGuard(mode string, auth ports.AuthService, repo ports.UserRepository, sessionCookie string, excludedPaths []string) (Guard, error) {
	switch mode {
	case "none", "":
		return &NoAuth{}, nil
	case "basic":
		return &BasicAuth{auth: auth, repo: repo, excluded: excludedPaths}, nil
	case "session":
		return &SessionAuth{auth: auth, cookie: sessionCookie, excluded: excludedPaths}, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
}

// RequireUser enforces the guard: unprotected paths pass through; protected
// paths must resolve to a user, which is stored on the context for
// handlers.
func RequireUser(g Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !g.RequiresAuth(c.Request().URL.Path) {
				return next(c)
			}

			user, err := g.IdentifyCaller(c)
			if err != nil {
				return err
			}
			if user == nil {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}

			c.Set(ContextUserKey, user)
			return next(c)
		}
	}
}

// UserFromContext returns the caller identified by RequireUser, or nil on
// an unprotected path.
func UserFromContext(c echo.Context) *domain.User {
	user, _ := c.Get(ContextUserKey).(*domain.User)
	return user
}

// pathExcluded reports whether path matches any exclusion entry. Matching
// is slash-tolerant ("/status" matches "/status/") and a trailing *
// matches any suffix.
func pathExcluded(path string, excluded []string) bool {
	if path == "" {
		return false
	}
	normalized := strings.TrimSuffix(path, "/")
	for _, ex := range excluded {
		if strings.HasSuffix(ex, "*") {
			if strings.HasPrefix(normalized, strings.TrimSuffix(ex, "*")) {
				return true
			}
			continue
		}
		if normalized == strings.TrimSuffix(ex, "/") {
			return true
		}
	}
	return false
}
