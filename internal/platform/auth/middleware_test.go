package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func gateFor(t *testing.T, iss *Issuer) echo.MiddlewareFunc {
	t.Helper()
	return Authenticate(GateConfig{
		Verifier: iss,
		Permissions: func(userID string) ([]string, bool) {
			if userID == "2" {
				return []string{PermReadStudies, PermAdminAll}, true
			}
			return nil, false
		},
		Logger: zerolog.Nop(),
	})
}

func runGate(t *testing.T, mw echo.MiddlewareFunc, header string) (bool, Identity, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/studies", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	var got Identity
	h := mw(func(c echo.Context) error {
		called = true
		got, _ = IdentityFromContext(c.Request().Context())
		return c.String(http.StatusOK, "ok")
	})
	err := h(c)
	return called, got, err
}

func expectStatus(t *testing.T, err error, code int, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %d error, got nil", code)
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != code {
		t.Errorf("expected %d, got %d", code, httpErr.Code)
	}
	if msg != "" && httpErr.Message != msg {
		t.Errorf("expected message %q, got %v", msg, httpErr.Message)
	}
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	called, _, err := runGate(t, gateFor(t, newTestIssuer(t, nil)), "")
	expectStatus(t, err, http.StatusUnauthorized, "Access token is required")
	if called {
		t.Error("handler must not run without a token")
	}
}

func TestAuthenticate_InvalidFormat(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "Token abc123"},
		{"missing token", "Bearer"},
		{"empty value", "Bearer "},
		{"basic auth", "Basic dXNlcjpwYXNz"},
	}
	mw := gateFor(t, newTestIssuer(t, nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called, _, err := runGate(t, mw, tt.header)
			expectStatus(t, err, http.StatusUnauthorized, "Access token is required")
			if called {
				t.Error("handler must not run")
			}
		})
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	called, _, err := runGate(t, gateFor(t, newTestIssuer(t, nil)), "Bearer not.a.token")
	expectStatus(t, err, http.StatusUnauthorized, "Invalid or expired token")
	if called {
		t.Error("handler must not run")
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	now := time.Now()
	iss := newTestIssuer(t, func() time.Time { return now })
	tok, _ := iss.IssueAccessToken(Subject{ID: "1", Role: RoleResearcher})
	now = now.Add(3 * time.Hour)

	called, _, err := runGate(t, gateFor(t, iss), "Bearer "+tok)
	expectStatus(t, err, http.StatusUnauthorized, "Invalid or expired token")
	if called {
		t.Error("handler must not run")
	}
}

func TestAuthenticate_DefaultPermissions(t *testing.T) {
	iss := newTestIssuer(t, nil)
	tok, _ := iss.IssueAccessToken(Subject{ID: "99", Email: "x@y.z", Role: RoleClinician})

	called, id, err := runGate(t, gateFor(t, iss), "Bearer "+tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("handler not called")
	}
	if id.UserID != "99" || id.Email != "x@y.z" || id.Role != RoleClinician {
		t.Errorf("unexpected identity: %+v", id)
	}
	if len(id.Permissions) != len(DefaultPermissions) {
		t.Errorf("expected default permissions, got %v", id.Permissions)
	}
}

func TestAuthenticate_KnownUserPermissions(t *testing.T) {
	iss := newTestIssuer(t, nil)
	tok, _ := iss.IssueAccessToken(Subject{ID: "2", Role: RoleAdmin})

	_, id, _ := runGate(t, gateFor(t, iss), "bearer "+tok)
	if !id.HasPermission(PermAdminAll) {
		t.Errorf("expected admin:all, got %v", id.Permissions)
	}
}
