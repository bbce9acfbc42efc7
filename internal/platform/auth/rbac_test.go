package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWith(id *Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id != nil {
		req = req.WithContext(WithIdentity(req.Context(), *id))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestAuthorize_AnyPermissionSuffices(t *testing.T) {
	c, rec := contextWith(&Identity{UserID: "1", Permissions: []string{PermReadPatients}})

	err := Authorize(PermWriteStudies, PermReadPatients)(okHandler)(c)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuthorize_Forbidden(t *testing.T) {
	c, _ := contextWith(&Identity{UserID: "1", Permissions: []string{PermReadStudies}})

	err := Authorize(PermWriteStudies)(okHandler)(c)
	expectStatus(t, err, http.StatusForbidden, "Insufficient permissions")
}

func TestAuthorize_NoIdentity(t *testing.T) {
	c, _ := contextWith(nil)
	err := Authorize(PermReadStudies)(okHandler)(c)
	expectStatus(t, err, http.StatusUnauthorized, "")
}

func TestRequireRole_Allowed(t *testing.T) {
	c, rec := contextWith(&Identity{UserID: "1", Role: RoleResearcher})

	err := RequireRole(RoleAdmin, RoleResearcher)(okHandler)(c)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	c, _ := contextWith(&Identity{UserID: "1", Role: RoleClinician})
	err := RequireRole(RoleAdmin, RoleResearcher)(okHandler)(c)
	expectStatus(t, err, http.StatusForbidden, "Insufficient role permissions")
}

func TestRequireRole_NoAdminBypass(t *testing.T) {
	c, _ := contextWith(&Identity{UserID: "2", Role: RoleAdmin, Permissions: []string{PermAdminAll}})
	err := RequireRole(RoleResearcher)(okHandler)(c)
	expectStatus(t, err, http.StatusForbidden, "Insufficient role permissions")
}
