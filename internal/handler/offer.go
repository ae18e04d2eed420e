package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fidelipark/loyalty-backend/internal/logger"
	"github.com/fidelipark/loyalty-backend/internal/middleware"
	"github.com/fidelipark/loyalty-backend/internal/model"
	"github.com/fidelipark/loyalty-backend/internal/queue"
	"github.com/fidelipark/loyalty-backend/internal/repository"
)

// CouponStore is the coupon surface the offer endpoints need.
type CouponStore interface {
	Create(ctx context.Context, merchantID uint64, description string, valeur float64, typeValeur string, pointsRequis uint64, expiration time.Time) (model.Coupon, error)
	OwnerOf(ctx context.Context, id uint64) (uint64, error)
	ListByMerchant(ctx context.Context, merchantID uint64) ([]model.Coupon, error)
	ListActiveByMerchant(ctx context.Context, merchantID uint64) ([]model.Coupon, error)
	ListAvailable(ctx context.Context) ([]repository.CouponWithMerchant, error)
	Update(ctx context.Context, id uint64, description string, valeur float64, typeValeur string, pointsRequis uint64, expiration time.Time) (model.Coupon, error)
	SoftDelete(ctx context.Context, id uint64) error
	Toggle(ctx context.Context, id uint64) (model.Coupon, error)
	Redeem(ctx context.Context, clientID, couponID uint64) (model.Coupon, error)
}

// ClientPointsStore reads back a client's balance after a redemption.
type ClientPointsStore interface {
	GetByID(ctx context.Context, id uint64) (model.Client, error)
}

// RedemptionPublisher emits the audit event after a committed redemption.
type RedemptionPublisher func(ctx context.Context, ev queue.CouponRedeemedEvent) error

// OfferHandler serves coupon CRUD for merchants and redemption for clients.
type OfferHandler struct {
	Coupons CouponStore
	Clients ClientPointsStore
	Publish RedemptionPublisher
}

func NewOfferHandler(co CouponStore, cl ClientPointsStore, pub RedemptionPublisher) *OfferHandler {
	return &OfferHandler{Coupons: co, Clients: cl, Publish: pub}
}

// ----- DTOs -----

type offerReq struct {
	Description    string    `json:"description"`
	Valeur         float64   `json:"valeur"`
	TypeValeur     string    `json:"type_valeur"`
	PointsRequis   int64     `json:"points_requis"`
	DateExpiration time.Time `json:"date_expiration"`
}

type couponView struct {
	ID             uint64    `json:"id"`
	MerchantID     uint64    `json:"merchant_id"`
	Description    string    `json:"description"`
	Valeur         float64   `json:"valeur"`
	TypeValeur     string    `json:"type_valeur"`
	PointsRequis   uint64    `json:"points_requis"`
	DateExpiration time.Time `json:"date_expiration"`
	Actif          bool      `json:"actif"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type availableCouponView struct {
	couponView
	NomMagasin string  `json:"nom_magasin"`
	Adresse    string  `json:"adresse"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

func toCouponView(c model.Coupon) couponView {
	return couponView{
		ID: c.ID, MerchantID: c.MerchantID, Description: c.Description,
		Valeur: c.Valeur, TypeValeur: c.TypeValeur, PointsRequis: c.PointsRequis,
		DateExpiration: c.DateExpiration, Actif: c.Actif,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

func toCouponViews(cs []model.Coupon) []couponView {
	out := make([]couponView, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCouponView(c))
	}
	return out
}

func (r *offerReq) validate() []fieldError {
	var errs []fieldError
	if strings.TrimSpace(r.Description) == "" {
		errs = append(errs, fieldError{Field: "description", Message: "description required"})
	}
	if r.Valeur <= 0 {
		errs = append(errs, fieldError{Field: "valeur", Message: "value must be positive"})
	}
	if r.TypeValeur != model.ValueTypeAmount && r.TypeValeur != model.ValueTypePercentage {
		errs = append(errs, fieldError{Field: "type_valeur", Message: "type must be montant or pourcentage"})
	}
	if r.PointsRequis < 0 {
		errs = append(errs, fieldError{Field: "points_requis", Message: "points must not be negative"})
	}
	if r.DateExpiration.IsZero() {
		errs = append(errs, fieldError{Field: "date_expiration", Message: "expiration date required"})
	}
	return errs
}

func currentUser(c echo.Context) uint64 {
	uid, _ := c.Get(middleware.CtxUserID).(uint64)
	return uid
}

// requireOwner resolves a coupon's owner and compares it to the caller.
// Returns a non-nil response error when the caller may not touch it.
func (h *OfferHandler) requireOwner(c echo.Context, ctx context.Context, couponID uint64) error {
	owner, err := h.Coupons.OwnerOf(ctx, couponID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
		}
		logger.L().Error("offer owner lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	if owner != currentUser(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you may only modify your own offers"})
	}
	return nil
}

// ListMine returns every coupon of the authenticated merchant, including
// inactive and expired ones.
func (h *OfferHandler) ListMine(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	offers, err := h.Coupons.ListByMerchant(ctx, currentUser(c))
	if err != nil {
		logger.L().Error("offer list failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, toCouponViews(offers))
}

// ListAvailable returns all redeemable coupons across active merchants.
func (h *OfferHandler) ListAvailable(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	offers, err := h.Coupons.ListAvailable(ctx)
	if err != nil {
		logger.L().Error("available offers failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	out := make([]availableCouponView, 0, len(offers))
	for _, o := range offers {
		out = append(out, availableCouponView{
			couponView: toCouponView(o.Coupon),
			NomMagasin: o.NomMagasin, Adresse: o.Adresse,
			Latitude: o.Latitude, Longitude: o.Longitude,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ByMerchant returns the redeemable coupons of one merchant.
func (h *OfferHandler) ByMerchant(c echo.Context) error {
	id, ok := pathID(c, "merchantId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid merchant id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	offers, err := h.Coupons.ListActiveByMerchant(ctx, id)
	if err != nil {
		logger.L().Error("merchant offers failed", zap.Error(err), zap.Uint64("merchant_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, toCouponViews(offers))
}

// Create publishes a new offer owned by the authenticated merchant.
func (h *OfferHandler) Create(c echo.Context) error {
	var req offerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	offer, err := h.Coupons.Create(ctx, currentUser(c), strings.TrimSpace(req.Description),
		req.Valeur, req.TypeValeur, uint64(req.PointsRequis), req.DateExpiration)
	if err != nil {
		logger.L().Error("offer create failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "offer created",
		"offer":   toCouponView(offer),
	})
}

// Update overwrites an offer the authenticated merchant owns.
func (h *OfferHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offer id"})
	}
	var req offerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if resp := h.requireOwner(c, ctx, id); resp != nil {
		return resp
	}

	offer, err := h.Coupons.Update(ctx, id, strings.TrimSpace(req.Description),
		req.Valeur, req.TypeValeur, uint64(req.PointsRequis), req.DateExpiration)
	if err != nil {
		logger.L().Error("offer update failed", zap.Error(err), zap.Uint64("offer_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "offer updated",
		"offer":   toCouponView(offer),
	})
}

// Delete soft-deletes an offer the authenticated merchant owns.
func (h *OfferHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offer id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if resp := h.requireOwner(c, ctx, id); resp != nil {
		return resp
	}

	if err := h.Coupons.SoftDelete(ctx, id); err != nil {
		logger.L().Error("offer delete failed", zap.Error(err), zap.Uint64("offer_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "offer deleted"})
}

// Toggle flips an offer's active flag.
func (h *OfferHandler) Toggle(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offer id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if resp := h.requireOwner(c, ctx, id); resp != nil {
		return resp
	}

	offer, err := h.Coupons.Toggle(ctx, id)
	if err != nil {
		logger.L().Error("offer toggle failed", zap.Error(err), zap.Uint64("offer_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	msg := "offer deactivated"
	if offer.Actif {
		msg = "offer activated"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": msg,
		"offer":   toCouponView(offer),
	})
}

// Redeem spends the authenticated client's points on an offer.  The
// deduction and the redemption record commit atomically; the audit event is
// published afterwards and a publish failure does not undo the redemption.
func (h *OfferHandler) Redeem(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offer id"})
	}
	clientID := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	offer, err := h.Coupons.Redeem(ctx, clientID, id)
	if err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
		case repository.ErrInsufficientPoints:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient points"})
		}
		logger.L().Error("redemption failed", zap.Error(err), zap.Uint64("offer_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	cl, err := h.Clients.GetByID(ctx, clientID)
	if err != nil {
		logger.L().Error("client reload failed", zap.Error(err), zap.Uint64("client_id", clientID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	if h.Publish != nil {
		ev := queue.CouponRedeemedEvent{
			ClientID:        clientID,
			ClientEmail:     cl.Email,
			CouponID:        offer.ID,
			MerchantID:      offer.MerchantID,
			Description:     offer.Description,
			Valeur:          offer.Valeur,
			TypeValeur:      offer.TypeValeur,
			PointsSpent:     offer.PointsRequis,
			PointsRemaining: cl.Points,
			RedeemedAt:      time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Publish(ctx, ev); err != nil {
			logger.L().Warn("redemption event publish failed", zap.Error(err), zap.Uint64("coupon_id", offer.ID))
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":          "offer redeemed",
		"offer":            toCouponView(offer),
		"points_remaining": cl.Points,
	})
}
