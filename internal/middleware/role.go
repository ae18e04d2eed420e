package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/fidelipark/loyalty-backend/internal/model"
)

// RequireRole returns a middleware that enforces that the authenticated
// account holds one of the given canonical role tags.  It assumes JWTAuth
// already ran and stored the role in context — an unauthenticated request
// never reaches this check because it fails in the verifier first.  A
// mismatch aborts the request with 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get(CtxRole)
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireClient gates a route to customer accounts.
func RequireClient() echo.MiddlewareFunc { return RequireRole(model.RoleClient) }

// RequireMerchant gates a route to merchant accounts.
func RequireMerchant() echo.MiddlewareFunc { return RequireRole(model.RoleMerchant) }

// RequireAdmin gates a route to administrator accounts.
func RequireAdmin() echo.MiddlewareFunc { return RequireRole(model.RoleAdmin) }
