package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fidelipark/loyalty-backend/internal/handler"
)

// RegisterPublic wires the unauthenticated browse endpoints under
// /api/public.  These return sanitized data for guests and are the only
// routes behind the response cache; authenticated responses are never
// cached.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/api/public", cache)
	g.GET("/merchants", p.ListMerchants)
	g.GET("/merchants/:id/offers", p.MerchantOffers)
}
