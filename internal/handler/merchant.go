package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fidelipark/loyalty-backend/internal/logger"
	"github.com/fidelipark/loyalty-backend/internal/middleware"
	"github.com/fidelipark/loyalty-backend/internal/model"
	"github.com/fidelipark/loyalty-backend/internal/repository"
)

// MerchantProfileStore is the merchant surface the profile endpoints need.
type MerchantProfileStore interface {
	ListActive(ctx context.Context) ([]model.Merchant, error)
	GetActiveByID(ctx context.Context, id uint64) (model.Merchant, error)
	UpdateProfile(ctx context.Context, id uint64, nomMagasin, adresse, nbTel, horaires string, lat, lng float64) (model.Merchant, error)
}

// CouponInfoStore provides the coupon lookups decorating merchant views.
type CouponInfoStore interface {
	HasActiveCoupons(ctx context.Context, merchantID uint64) (bool, error)
	ListActiveByMerchant(ctx context.Context, merchantID uint64) ([]model.Coupon, error)
	Stats(ctx context.Context, merchantID uint64) (repository.MerchantStats, error)
}

// MerchantHandler serves the merchant directory and profile endpoints.
type MerchantHandler struct {
	Merchants MerchantProfileStore
	Coupons   CouponInfoStore
}

func NewMerchantHandler(m MerchantProfileStore, c CouponInfoStore) *MerchantHandler {
	return &MerchantHandler{Merchants: m, Coupons: c}
}

type merchantView struct {
	ID         uint64    `json:"id"`
	NomMagasin string    `json:"nom_magasin"`
	Email      string    `json:"email"`
	Adresse    string    `json:"adresse"`
	NbTel      string    `json:"nb_tel,omitempty"`
	Actif      bool      `json:"actif"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Horaires   string    `json:"horaires,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type merchantListItem struct {
	merchantView
	HasOffers bool `json:"has_offers"`
}

func toMerchantView(m model.Merchant) merchantView {
	return merchantView{
		ID: m.ID, NomMagasin: m.NomMagasin, Email: m.Email, Adresse: m.Adresse,
		NbTel: m.NbTel, Actif: m.Actif, Latitude: m.Latitude, Longitude: m.Longitude,
		Horaires: m.Horaires, CreatedAt: m.CreatedAt,
	}
}

type updateMerchantReq struct {
	NomMagasin string  `json:"nom_magasin"`
	Adresse    string  `json:"adresse"`
	NbTel      string  `json:"nb_tel"`
	Horaires   string  `json:"horaires"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// List returns all active merchants, each flagged with whether it
// currently has redeemable offers.
func (h *MerchantHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	merchants, err := h.Merchants.ListActive(ctx)
	if err != nil {
		logger.L().Error("merchant list failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	out := make([]merchantListItem, 0, len(merchants))
	for _, m := range merchants {
		has, err := h.Coupons.HasActiveCoupons(ctx, m.ID)
		if err != nil {
			logger.L().Error("offer lookup failed", zap.Error(err), zap.Uint64("merchant_id", m.ID))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
		}
		out = append(out, merchantListItem{merchantView: toMerchantView(m), HasOffers: has})
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one active merchant with its redeemable offers.
func (h *MerchantHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid merchant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Merchants.GetActiveByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "merchant not found"})
		}
		logger.L().Error("merchant lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	offers, err := h.Coupons.ListActiveByMerchant(ctx, id)
	if err != nil {
		logger.L().Error("offer list failed", zap.Error(err), zap.Uint64("merchant_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"merchant": toMerchantView(m),
		"offers":   toCouponViews(offers),
	})
}

// Update overwrites a merchant's own profile.  The route is gated to the
// MERCHANT role; ownership of the targeted profile is checked here.
func (h *MerchantHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid merchant id"})
	}
	if uid, _ := c.Get(middleware.CtxUserID).(uint64); uid != id {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req updateMerchantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var errs []fieldError
	if strings.TrimSpace(req.NomMagasin) == "" {
		errs = append(errs, fieldError{Field: "nom_magasin", Message: "store name required"})
	}
	if strings.TrimSpace(req.Adresse) == "" {
		errs = append(errs, fieldError{Field: "adresse", Message: "address required"})
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Merchants.UpdateProfile(ctx, id,
		strings.TrimSpace(req.NomMagasin), strings.TrimSpace(req.Adresse),
		strings.TrimSpace(req.NbTel), strings.TrimSpace(req.Horaires),
		req.Latitude, req.Longitude)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "merchant not found"})
		}
		logger.L().Error("merchant update failed", zap.Error(err), zap.Uint64("merchant_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "profile updated",
		"merchant": toMerchantView(m),
	})
}

// Stats returns a merchant's own coupon counters.
func (h *MerchantHandler) Stats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid merchant id"})
	}
	if uid, _ := c.Get(middleware.CtxUserID).(uint64); uid != id {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Coupons.Stats(ctx, id)
	if err != nil {
		logger.L().Error("merchant stats failed", zap.Error(err), zap.Uint64("merchant_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, s)
}
