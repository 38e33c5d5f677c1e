package middleware

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gatehouse/identity-service/internal/core/domain"
	"github.com/gatehouse/identity-service/internal/core/ports"
)

// BasicAuth identifies callers from an HTTP Basic Authorization header:
// base64("email:password"), verified against the stored credentials.
type BasicAuth struct {
	auth     ports.AuthService
	repo     ports.UserRepository
	excluded []string
}

func (b *BasicAuth) RequiresAuth(path string) bool {
	return !pathExcluded(path, b.excluded)
}

func (b *BasicAuth) IdentifyCaller(c echo.Context) (*domain.User, error) {
	email, password, err := decodeBasicHeader(c.Request().Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}

	ctx := c.Request().Context()
	ok, err := b.auth.ValidLogin(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	user, err := b.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// decodeBasicHeader extracts the credential pair from an Authorization
// header. The password may itself contain colons; only the first colon
// separates email from password.
func decodeBasicHeader(header string) (email, password string, err error) {
	if header == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "basic") {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	raw, decodeErr := base64.StdEncoding.DecodeString(parts[1])
	if decodeErr != nil {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	email, password, found := strings.Cut(string(raw), ":")
	if !found || email == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid credential format")
	}
	return email, password, nil
}
