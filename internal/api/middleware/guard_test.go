package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/gatehouse/identity-service/internal/core/domain"
)

// stubAuthService implements the subset of ports.AuthService the guards use.
type stubAuthService struct {
	users    map[string]*domain.User // keyed by email
	sessions map[string]*domain.User // keyed by session token
}

func (s *stubAuthService) RegisterUser(context.Context, string, string) (*domain.User, error) {
	return nil, nil
}

func (s *stubAuthService) ValidLogin(_ context.Context, email, password string) (bool, error) {
	_, ok := s.users[email]
	return ok && password == "good", nil
}

func (s *stubAuthService) CreateSession(context.Context, string) (string, error) { return "", nil }

func (s *stubAuthService) GetUserFromSession(_ context.Context, token string) (*domain.User, error) {
	return s.sessions[token], nil
}

func (s *stubAuthService) DestroySession(context.Context, string) error { return nil }

func (s *stubAuthService) GetResetToken(context.Context, string) (string, error) { return "", nil }

func (s *stubAuthService) UpdatePassword(context.Context, string, string) error { return nil }

func TestPathExcluded(t *testing.T) {
	excluded := []string{"/", "/users", "/health*", "/swagger*"}

	cases := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/users", true},
		{"/users/", true},
		{"/health", true},
		{"/health/ready", true},
		{"/swagger/index.html", true},
		{"/profile", false},
		{"/sessions", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := pathExcluded(tc.path, excluded); got != tc.want {
			t.Errorf("pathExcluded(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestNewGuard_SelectsVariant(t *testing.T) {
	svc := &stubAuthService{}

	g, err := NewGuard("none", svc, nil, "session_id", nil)
	if err != nil {
		t.Fatalf("NewGuard(none) failed: %v", err)
	}
	if _, ok := g.(*NoAuth); !ok {
		t.Fatalf("expected *NoAuth, got %T", g)
	}

	g, err = NewGuard("basic", svc, nil, "session_id", nil)
	if err != nil {
		t.Fatalf("NewGuard(basic) failed: %v", err)
	}
	if _, ok := g.(*BasicAuth); !ok {
		t.Fatalf("expected *BasicAuth, got %T", g)
	}

	g, err = NewGuard("session", svc, nil, "session_id", nil)
	if err != nil {
		t.Fatalf("NewGuard(session) failed: %v", err)
	}
	if _, ok := g.(*SessionAuth); !ok {
		t.Fatalf("expected *SessionAuth, got %T", g)
	}

	if _, err := NewGuard("kerberos", svc, nil, "session_id", nil); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestDecodeBasicHeader(t *testing.T) {
	email, password, err := decodeBasicHeader("Basic " + base64.StdEncoding.EncodeToString([]byte("a@x.com:pw:with:colons")))
	if err != nil {
		t.Fatalf("decodeBasicHeader failed: %v", err)
	}
	if email != "a@x.com" || password != "pw:with:colons" {
		t.Fatalf("got (%q, %q)", email, password)
	}

	for _, header := range []string{"", "Bearer abc", "Basic !!!notbase64", "Basic " + base64.StdEncoding.EncodeToString([]byte("nocolon"))} {
		if _, _, err := decodeBasicHeader(header); err == nil {
			t.Errorf("header %q: expected error", header)
		}
	}
}

func TestRequireUser_SessionGuard(t *testing.T) {
	owner := &domain.User{ID: "1", Email: "a@x.com"}
	svc := &stubAuthService{sessions: map[string]*domain.User{"tok-1": owner}}
	guard := &SessionAuth{auth: svc, cookie: "session_id", excluded: []string{"/"}}

	e := echo.New()
	handlerFn := RequireUser(guard)(func(c echo.Context) error {
		user := UserFromContext(c)
		if user == nil {
			t.Fatal("expected user on context")
		}
		return c.NoContent(http.StatusOK)
	})

	// Valid session cookie passes.
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "tok-1"})
	rec := httptest.NewRecorder()
	if err := handlerFn(e.NewContext(req, rec)); err != nil {
		t.Fatalf("valid session rejected: %v", err)
	}

	// Missing cookie is a 401.
	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	err := handlerFn(e.NewContext(req, httptest.NewRecorder()))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}

	// Unknown token is a 403.
	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "stale"})
	err = handlerFn(e.NewContext(req, httptest.NewRecorder()))
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}

	// Excluded path passes without credentials.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	okFn := RequireUser(guard)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := okFn(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("excluded path rejected: %v", err)
	}
}
