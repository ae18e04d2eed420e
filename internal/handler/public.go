package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fidelipark/loyalty-backend/internal/logger"
	"github.com/fidelipark/loyalty-backend/internal/repository"
)

// PublicHandler exposes unauthenticated browse endpoints so guests can
// preview participating stores before creating an account.  Responses are
// sanitized: no email addresses, no account flags.  These routes sit
// behind the response cache.
type PublicHandler struct {
	Merchants MerchantProfileStore
	Coupons   CouponInfoStore
}

func NewPublicHandler(m MerchantProfileStore, c CouponInfoStore) *PublicHandler {
	return &PublicHandler{Merchants: m, Coupons: c}
}

type publicMerchantView struct {
	ID         uint64  `json:"id"`
	NomMagasin string  `json:"nom_magasin"`
	Adresse    string  `json:"adresse"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Horaires   string  `json:"horaires,omitempty"`
	HasOffers  bool    `json:"has_offers"`
}

// ListMerchants returns all active stores with an offer flag.
func (h *PublicHandler) ListMerchants(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	merchants, err := h.Merchants.ListActive(ctx)
	if err != nil {
		logger.L().Error("public merchant list failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	out := make([]publicMerchantView, 0, len(merchants))
	for _, m := range merchants {
		has, err := h.Coupons.HasActiveCoupons(ctx, m.ID)
		if err != nil {
			logger.L().Error("public offer lookup failed", zap.Error(err), zap.Uint64("merchant_id", m.ID))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
		}
		out = append(out, publicMerchantView{
			ID: m.ID, NomMagasin: m.NomMagasin, Adresse: m.Adresse,
			Latitude: m.Latitude, Longitude: m.Longitude, Horaires: m.Horaires,
			HasOffers: has,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// MerchantOffers returns the redeemable coupons of one active store.
func (h *PublicHandler) MerchantOffers(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid merchant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Merchants.GetActiveByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "merchant not found"})
		}
		logger.L().Error("public merchant lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	offers, err := h.Coupons.ListActiveByMerchant(ctx, id)
	if err != nil {
		logger.L().Error("public offer list failed", zap.Error(err), zap.Uint64("merchant_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, toCouponViews(offers))
}
