package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/fidelipark/loyalty-backend/internal/model"
)

func runRoleGate(t *testing.T, gate echo.MiddlewareFunc, role string) (int, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(CtxRole, role)
	}

	called := false
	h := gate(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec.Code, called
}

func TestRoleGateMatrix(t *testing.T) {
	gates := map[string]echo.MiddlewareFunc{
		model.RoleClient:   RequireClient(),
		model.RoleMerchant: RequireMerchant(),
		model.RoleAdmin:    RequireAdmin(),
	}
	for want, gate := range gates {
		for _, held := range []string{model.RoleClient, model.RoleMerchant, model.RoleAdmin} {
			code, called := runRoleGate(t, gate, held)
			if held == want {
				if code != http.StatusOK || !called {
					t.Errorf("gate %s with role %s: code = %d, called = %v; want 200, true", want, held, code, called)
				}
			} else {
				if code != http.StatusForbidden || called {
					t.Errorf("gate %s with role %s: code = %d, called = %v; want 403, false", want, held, code, called)
				}
			}
		}
	}
}

func TestRoleGateMissingRole(t *testing.T) {
	code, called := runRoleGate(t, RequireMerchant(), "")
	if code != http.StatusForbidden || called {
		t.Errorf("code = %d, called = %v; want 403, false", code, called)
	}
}

func TestRequireRoleAcceptsAnyListedRole(t *testing.T) {
	gate := RequireRole(model.RoleClient, model.RoleMerchant)
	for _, held := range []string{model.RoleClient, model.RoleMerchant} {
		if code, called := runRoleGate(t, gate, held); code != http.StatusOK || !called {
			t.Errorf("role %s: code = %d, called = %v; want 200, true", held, code, called)
		}
	}
	if code, called := runRoleGate(t, gate, model.RoleAdmin); code != http.StatusForbidden || called {
		t.Errorf("ADMIN: code = %d, called = %v; want 403, false", code, called)
	}
}
