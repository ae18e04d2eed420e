package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fidelipark/loyalty-backend/internal/handler"
	"github.com/fidelipark/loyalty-backend/internal/middleware"
)

// RegisterOffers wires the coupon endpoints under /api/offers.  All routes
// require a verified session.  Publishing and mutating offers is merchant
// work; redemption is client work; the read-only listings are open to any
// authenticated role.
func RegisterOffers(e *echo.Echo, h *handler.OfferHandler, jwtSecret string, bl middleware.TokenBlacklist) {
	g := e.Group("/api/offers", middleware.JWTAuth(jwtSecret, bl))
	g.GET("", h.ListMine, middleware.RequireMerchant())
	g.GET("/available", h.ListAvailable)
	g.GET("/merchant/:merchantId", h.ByMerchant)
	g.POST("", h.Create, middleware.RequireMerchant())
	g.PUT("/:id", h.Update, middleware.RequireMerchant())
	g.DELETE("/:id", h.Delete, middleware.RequireMerchant())
	g.PATCH("/:id/toggle", h.Toggle, middleware.RequireMerchant())
	g.POST("/:id/redeem", h.Redeem, middleware.RequireClient())
}
