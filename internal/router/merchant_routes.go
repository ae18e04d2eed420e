package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fidelipark/loyalty-backend/internal/handler"
	"github.com/fidelipark/loyalty-backend/internal/middleware"
)

// RegisterMerchants wires the merchant directory and profile endpoints
// under /api/merchants.  Every route requires a verified session; the
// mutating routes additionally require the MERCHANT role, and the handlers
// enforce that a merchant only touches its own profile.
func RegisterMerchants(e *echo.Echo, h *handler.MerchantHandler, jwtSecret string, bl middleware.TokenBlacklist) {
	g := e.Group("/api/merchants", middleware.JWTAuth(jwtSecret, bl))
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update, middleware.RequireMerchant())
	g.GET("/:id/stats", h.Stats, middleware.RequireMerchant())
}
