package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fidelipark/loyalty-backend/internal/model"
	"github.com/fidelipark/loyalty-backend/internal/utils"
)

const testSecret = "middleware-test-secret"

// fakeBlacklist satisfies TokenBlacklist without Redis.
type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (f *fakeBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[token], nil
}

func runJWTAuth(t *testing.T, bl TokenBlacklist, authHeader string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := JWTAuth(testSecret, bl)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, c, called
}

func issue(t *testing.T, userID uint64, role, email string) string {
	t.Helper()
	tok, err := utils.NewSessionToken(testSecret, userID, role, email, 7)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok.Token
}

func TestJWTAuthMissingToken(t *testing.T) {
	bl := &fakeBlacklist{revoked: map[string]bool{}}
	for _, header := range []string{"", "Bearer ", "Basic abc"} {
		rec, _, called := runJWTAuth(t, bl, header)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
		if called {
			t.Errorf("header %q: next handler ran", header)
		}
	}
}

func TestJWTAuthValidToken(t *testing.T) {
	raw := issue(t, 42, model.RoleClient, "a@x.com")
	bl := &fakeBlacklist{revoked: map[string]bool{}}

	rec, c, called := runJWTAuth(t, bl, "Bearer "+raw)
	if rec.Code != http.StatusOK || !called {
		t.Fatalf("status = %d, called = %v; want 200, true", rec.Code, called)
	}
	if got, _ := c.Get(CtxUserID).(uint64); got != 42 {
		t.Errorf("user_id = %v, want 42", c.Get(CtxUserID))
	}
	if got, _ := c.Get(CtxRole).(string); got != model.RoleClient {
		t.Errorf("role = %v, want CLIENT", c.Get(CtxRole))
	}
	if got, _ := c.Get(CtxEmail).(string); got != "a@x.com" {
		t.Errorf("email = %v, want a@x.com", c.Get(CtxEmail))
	}
	if got, _ := c.Get(CtxToken).(string); got != raw {
		t.Error("raw token not stored in context")
	}
	if exp, _ := c.Get(CtxTokenExp).(time.Time); !exp.After(time.Now()) {
		t.Error("token expiry missing from context")
	}
}

func TestJWTAuthRevokedToken(t *testing.T) {
	raw := issue(t, 42, model.RoleClient, "a@x.com")
	bl := &fakeBlacklist{revoked: map[string]bool{raw: true}}

	rec, _, called := runJWTAuth(t, bl, "Bearer "+raw)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if called {
		t.Error("next handler ran for a revoked token")
	}
}

func TestJWTAuthRevokedBeatsValidSignature(t *testing.T) {
	// Two distinct tokens for the same account are independently revocable:
	// revoking one must not touch the other.
	tok1 := issue(t, 42, model.RoleClient, "a@x.com")
	tok2 := issue(t, 42, model.RoleClient, "a@x.com")
	bl := &fakeBlacklist{revoked: map[string]bool{tok1: true}}

	rec, _, _ := runJWTAuth(t, bl, "Bearer "+tok1)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked token: status = %d, want 401", rec.Code)
	}
	rec, _, called := runJWTAuth(t, bl, "Bearer "+tok2)
	if rec.Code != http.StatusOK || !called {
		t.Errorf("sibling token: status = %d, called = %v; want 200, true", rec.Code, called)
	}
}

func TestJWTAuthInvalidSignature(t *testing.T) {
	other, err := utils.NewSessionToken("some-other-secret", 42, model.RoleClient, "a@x.com", 7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	bl := &fakeBlacklist{revoked: map[string]bool{}}

	rec, _, called := runJWTAuth(t, bl, "Bearer "+other.Token)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if called {
		t.Error("next handler ran for a forged token")
	}
}

func TestJWTAuthUnknownRoleRejected(t *testing.T) {
	raw := issue(t, 42, "COMMERCANT", "m@x.com")
	bl := &fakeBlacklist{revoked: map[string]bool{}}

	rec, _, called := runJWTAuth(t, bl, "Bearer "+raw)
	if rec.Code != http.StatusForbidden || called {
		t.Errorf("status = %d, called = %v; want 403, false", rec.Code, called)
	}
}

func TestJWTAuthBlacklistFailureIsNotNotRevoked(t *testing.T) {
	raw := issue(t, 42, model.RoleClient, "a@x.com")
	bl := &fakeBlacklist{err: errors.New("redis down")}

	rec, _, called := runJWTAuth(t, bl, "Bearer "+raw)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if called {
		t.Error("next handler ran while the blacklist was unreachable")
	}
}
