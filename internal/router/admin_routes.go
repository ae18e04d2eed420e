package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fidelipark/loyalty-backend/internal/handler"
	"github.com/fidelipark/loyalty-backend/internal/middleware"
)

// RegisterClients wires the back-office client endpoints under
// /api/clients.  Only administrators may credit points.
func RegisterClients(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, bl middleware.TokenBlacklist) {
	g := e.Group("/api/clients", middleware.JWTAuth(jwtSecret, bl))
	g.POST("/:id/points", h.AwardPoints, middleware.RequireAdmin())
}
