package middleware // package middleware contains reusable HTTP middleware functions

import (
	"context"  // context type for the blacklist interface
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers
	"go.uber.org/zap"

	"github.com/fidelipark/loyalty-backend/internal/logger"
	"github.com/fidelipark/loyalty-backend/internal/model"
	"github.com/fidelipark/loyalty-backend/internal/utils"
)

// TokenBlacklist is the revocation lookup the verifier needs.  The Redis
// repository satisfies it in production; tests plug in fakes.
type TokenBlacklist interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Context keys populated by JWTAuth for downstream middleware and handlers.
const (
	CtxUserID   = "user_id"   // uint64 subject id
	CtxRole     = "role"      // canonical role tag
	CtxEmail    = "email"     // account email
	CtxToken    = "token"     // raw bearer string, for logout revocation
	CtxTokenExp = "token_exp" // time.Time expiry, for blacklist TTL
)

// JWTAuth returns an Echo middleware that validates a Bearer session token
// and injects the verified identity into the request context.  The order of
// checks matters: the blacklist is consulted on the literal bearer string
// before any parse result is trusted, so a revoked token stays dead no
// matter what its claims say.  Status codes distinguish the failure modes:
// 401 for missing, revoked or expired tokens (the client should log in
// again) and 403 for a signature that never verified.
func JWTAuth(secret string, blacklist TokenBlacklist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			revoked, err := blacklist.IsRevoked(c.Request().Context(), raw)
			if err != nil {
				// A blacklist we cannot read must not be read as "not revoked".
				logger.L().Error("blacklist lookup failed", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authentication unavailable"})
			}
			if revoked {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token revoked"})
			}

			claims, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				if err == utils.ErrTokenExpired {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired"})
				}
				return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid token"})
			}
			if !model.ValidRole(claims.Role) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid token"})
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxToken, raw)
			c.Set(CtxTokenExp, claims.ExpiresAt.Time)
			return next(c)
		}
	}
}
