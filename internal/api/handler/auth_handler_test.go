package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse/identity-service/internal/core/domain"
	"github.com/gatehouse/identity-service/internal/core/service"
	"github.com/gatehouse/identity-service/internal/infrastructure/crypto"
	"github.com/gatehouse/identity-service/internal/infrastructure/db/memory"
	"github.com/gatehouse/identity-service/internal/infrastructure/token"
)

const testCookie = "session_id"

func newTestHandler() (*AuthHandler, *echo.Echo) {
	repo := memory.NewUserRepository()
	svc := service.NewAuthService(repo, crypto.NewBcryptHasher(bcrypt.MinCost), token.NewUUIDSource(), nil)
	h := NewAuthHandler(svc, testCookie)

	e := echo.New()
	e.Validator = NewValidator()
	return h, e
}

func doJSON(e *echo.Echo, method, path, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	res := http.Response{Header: rec.Header()}
	for _, c := range res.Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	h, e := newTestHandler()

	rec, c := doJSON(e, http.MethodPost, "/users", `{"email":"a@x.com","password":"pw1"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["email"] != "a@x.com" || resp["message"] != "user created" {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	h, e := newTestHandler()

	_, c := doJSON(e, http.MethodPost, "/users", `{"email":"a@x.com","password":"pw1"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	_, c = doJSON(e, http.MethodPost, "/users", `{"email":"a@x.com","password":"pw2"}`)
	err := h.Register(c)
	if err == nil || !strings.Contains(err.Error(), domain.ErrUserExists.Error()) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	h, e := newTestHandler()

	for _, body := range []string{`{}`, `{"email":"not-an-email","password":"pw"}`, `{"email":"a@x.com"}`} {
		_, c := doJSON(e, http.MethodPost, "/users", body)
		err := h.Register(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %v", body, err)
		}
	}
}

func TestAuthHandler_LoginLogoutProfile(t *testing.T) {
	h, e := newTestHandler()

	_, c := doJSON(e, http.MethodPost, "/users", `{"email":"a@x.com","password":"pw1"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Login sets the session cookie.
	rec, c := doJSON(e, http.MethodPost, "/sessions", `{"email":"a@x.com","password":"pw1"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected a session cookie")
	}

	// Profile resolves the cookie to the account email.
	rec, c = doJSON(e, http.MethodGet, "/profile", "", cookie)
	if err := h.Profile(c); err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	var profile map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &profile)
	if profile["email"] != "a@x.com" {
		t.Fatalf("unexpected profile: %v", profile)
	}

	// Logout redirects and invalidates the session.
	rec, c = doJSON(e, http.MethodDelete, "/sessions", "", cookie)
	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	_, c = doJSON(e, http.MethodGet, "/profile", "", cookie)
	err := h.Profile(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 after logout, got %v", err)
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	h, e := newTestHandler()

	_, c := doJSON(e, http.MethodPost, "/users", `{"email":"a@x.com","password":"pw1"}`)
	_ = h.Register(c)

	for _, body := range []string{
		`{"email":"a@x.com","password":"wrong"}`,
		`{"email":"missing@x.com","password":"pw1"}`,
	} {
		_, c := doJSON(e, http.MethodPost, "/sessions", body)
		err := h.Login(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Fatalf("body %s: expected 401, got %v", body, err)
		}
	}
}

func TestAuthHandler_Logout_NoSession(t *testing.T) {
	h, e := newTestHandler()

	_, c := doJSON(e, http.MethodDelete, "/sessions", "")
	err := h.Logout(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without a session, got %v", err)
	}
}

func TestAuthHandler_ResetPasswordFlow(t *testing.T) {
	h, e := newTestHandler()

	_, c := doJSON(e, http.MethodPost, "/users", `{"email":"b@x.com","password":"pw2"}`)
	_ = h.Register(c)

	// Request a reset token.
	rec, c := doJSON(e, http.MethodPost, "/reset_password", `{"email":"b@x.com"}`)
	if err := h.RequestReset(c); err != nil {
		t.Fatalf("RequestReset failed: %v", err)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	resetToken := resp["reset_token"]
	if resetToken == "" {
		t.Fatal("expected a reset token")
	}

	// Consume it.
	rec, c = doJSON(e, http.MethodPut, "/reset_password",
		`{"reset_token":"`+resetToken+`","new_password":"pw3"}`)
	if err := h.UpdatePassword(c); err != nil {
		t.Fatalf("UpdatePassword failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Old password no longer logs in; new one does.
	_, c = doJSON(e, http.MethodPost, "/sessions", `{"email":"b@x.com","password":"pw2"}`)
	if err := h.Login(c); err == nil {
		t.Fatal("old password still accepted")
	}
	rec, c = doJSON(e, http.MethodPost, "/sessions", `{"email":"b@x.com","password":"pw3"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	// A consumed token is forbidden.
	_, c = doJSON(e, http.MethodPut, "/reset_password",
		`{"reset_token":"`+resetToken+`","new_password":"pw4"}`)
	err := h.UpdatePassword(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for consumed token, got %v", err)
	}
}

func TestAuthHandler_RequestReset_UnknownEmail(t *testing.T) {
	h, e := newTestHandler()

	_, c := doJSON(e, http.MethodPost, "/reset_password", `{"email":"missing@x.com"}`)
	err := h.RequestReset(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown email, got %v", err)
	}
}
