package middleware

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/gatehouse/identity-service/internal/core/domain"
	"github.com/gatehouse/identity-service/internal/infrastructure/db/memory"
)

func basicRequest(e *echo.Echo, header string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBasicAuth_IdentifyCaller(t *testing.T) {
	repo := memory.NewUserRepository()
	if _, err := repo.Create(context.Background(), "a@x.com", "hash"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	svc := &stubAuthService{users: map[string]*domain.User{"a@x.com": {Email: "a@x.com"}}}
	guard := &BasicAuth{auth: svc, repo: repo, excluded: []string{"/"}}
	e := echo.New()

	// Correct credentials resolve to the stored user.
	header := "Basic " + base64.StdEncoding.EncodeToString([]byte("a@x.com:good"))
	user, err := guard.IdentifyCaller(basicRequest(e, header))
	if err != nil {
		t.Fatalf("IdentifyCaller failed: %v", err)
	}
	if user == nil || user.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	// Wrong password: credentials presented but no match.
	header = "Basic " + base64.StdEncoding.EncodeToString([]byte("a@x.com:bad"))
	user, err = guard.IdentifyCaller(basicRequest(e, header))
	if err != nil || user != nil {
		t.Fatalf("expected (nil, nil) for bad password, got (%+v, %v)", user, err)
	}

	// Missing header: 401.
	_, err = guard.IdentifyCaller(basicRequest(e, ""))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing header, got %v", err)
	}
}
