package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // the Echo web framework handles routing

	"github.com/fidelipark/loyalty-backend/internal/handler"
	"github.com/fidelipark/loyalty-backend/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication or
// dependencies.  Currently it exposes only a health check used by load
// balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the session lifecycle endpoints.  The unauthenticated
// operations (register, login, logout) live under /api/auth behind the rate
// limiter; /api/auth/me is the one protected route registered here.  Logout
// is deliberately outside the JWT middleware: its handler distinguishes a
// missing token (400) from an unverifiable one, a split the middleware does
// not make.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, bl middleware.TokenBlacklist, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth", limiter)
	g.POST("/register/client", a.RegisterClient)
	g.POST("/register/merchant", a.RegisterMerchant)
	g.POST("/login", a.Login)
	g.POST("/logout/client", a.LogoutClient)
	g.POST("/logout/merchant", a.LogoutMerchant)

	auth := e.Group("/api/auth", middleware.JWTAuth(jwtSecret, bl))
	auth.GET("/me", a.Me)
}
