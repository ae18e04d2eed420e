package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fidelipark/loyalty-backend/internal/middleware"
	"github.com/fidelipark/loyalty-backend/internal/model"
	"github.com/fidelipark/loyalty-backend/internal/queue"
	"github.com/fidelipark/loyalty-backend/internal/repository"
)

type fakeCouponStore struct {
	coupons   map[uint64]model.Coupon
	nextID    uint64
	redeemErr error
	updated   bool
}

func newFakeCouponStore(seed ...model.Coupon) *fakeCouponStore {
	f := &fakeCouponStore{coupons: map[uint64]model.Coupon{}}
	for _, c := range seed {
		f.coupons[c.ID] = c
		if c.ID > f.nextID {
			f.nextID = c.ID
		}
	}
	return f
}

func (f *fakeCouponStore) Create(_ context.Context, merchantID uint64, description string, valeur float64, typeValeur string, pointsRequis uint64, expiration time.Time) (model.Coupon, error) {
	f.nextID++
	c := model.Coupon{ID: f.nextID, MerchantID: merchantID, Description: description,
		Valeur: valeur, TypeValeur: typeValeur, PointsRequis: pointsRequis,
		DateExpiration: expiration, Actif: true}
	f.coupons[c.ID] = c
	return c, nil
}

func (f *fakeCouponStore) OwnerOf(_ context.Context, id uint64) (uint64, error) {
	c, ok := f.coupons[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return c.MerchantID, nil
}

func (f *fakeCouponStore) ListByMerchant(_ context.Context, merchantID uint64) ([]model.Coupon, error) {
	var out []model.Coupon
	for _, c := range f.coupons {
		if c.MerchantID == merchantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCouponStore) ListActiveByMerchant(_ context.Context, merchantID uint64) ([]model.Coupon, error) {
	var out []model.Coupon
	for _, c := range f.coupons {
		if c.MerchantID == merchantID && c.Actif && c.DateExpiration.After(time.Now()) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCouponStore) ListAvailable(_ context.Context) ([]repository.CouponWithMerchant, error) {
	var out []repository.CouponWithMerchant
	for _, c := range f.coupons {
		if c.Actif && c.DateExpiration.After(time.Now()) {
			out = append(out, repository.CouponWithMerchant{Coupon: c, NomMagasin: "Chez Momo"})
		}
	}
	return out, nil
}

func (f *fakeCouponStore) Update(_ context.Context, id uint64, description string, valeur float64, typeValeur string, pointsRequis uint64, expiration time.Time) (model.Coupon, error) {
	c, ok := f.coupons[id]
	if !ok {
		return model.Coupon{}, repository.ErrNotFound
	}
	c.Description, c.Valeur, c.TypeValeur = description, valeur, typeValeur
	c.PointsRequis, c.DateExpiration = pointsRequis, expiration
	f.coupons[id] = c
	f.updated = true
	return c, nil
}

func (f *fakeCouponStore) SoftDelete(_ context.Context, id uint64) error {
	if _, ok := f.coupons[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.coupons, id)
	return nil
}

func (f *fakeCouponStore) Toggle(_ context.Context, id uint64) (model.Coupon, error) {
	c, ok := f.coupons[id]
	if !ok {
		return model.Coupon{}, repository.ErrNotFound
	}
	c.Actif = !c.Actif
	f.coupons[id] = c
	return c, nil
}

func (f *fakeCouponStore) Redeem(_ context.Context, clientID, couponID uint64) (model.Coupon, error) {
	if f.redeemErr != nil {
		return model.Coupon{}, f.redeemErr
	}
	c, ok := f.coupons[couponID]
	if !ok || !c.Actif || !c.DateExpiration.After(time.Now()) {
		return model.Coupon{}, repository.ErrNotFound
	}
	return c, nil
}

// doOffer drives one offer handler with the identity and path params the
// router middleware would normally attach.
func doOffer(t *testing.T, h echo.HandlerFunc, method, body string, uid uint64, role string, params map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserID, uid)
	c.Set(middleware.CtxRole, role)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Body.String(), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("response not JSON: %v: %s", err, rec.Body.String())
		}
	}
	return rec, out
}

func seedCoupon(id, merchantID, points uint64) model.Coupon {
	return model.Coupon{
		ID: id, MerchantID: merchantID, Description: "-10% sur le lavage",
		Valeur: 10, TypeValeur: model.ValueTypePercentage, PointsRequis: points,
		DateExpiration: time.Now().Add(30 * 24 * time.Hour), Actif: true,
	}
}

func idParam(id uint64) map[string]string {
	return map[string]string{"id": strconv.FormatUint(id, 10)}
}

func TestCreateOffer(t *testing.T) {
	store := newFakeCouponStore()
	h := NewOfferHandler(store, newFakeClients(), nil)

	body := `{"description":"-10% sur le lavage","valeur":10,"type_valeur":"pourcentage","points_requis":60,"date_expiration":"2027-01-01T00:00:00Z"}`
	rec, out := doOffer(t, h.Create, http.MethodPost, body, 7, model.RoleMerchant, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	offer := out["offer"].(map[string]any)
	if mid := offer["merchant_id"].(float64); mid != 7 {
		t.Errorf("merchant_id = %v, want 7 (owner comes from the token, not the body)", mid)
	}
}

func TestCreateOfferValidation(t *testing.T) {
	h := NewOfferHandler(newFakeCouponStore(), newFakeClients(), nil)
	cases := []struct{ name, body string }{
		{"negative points", `{"description":"d","valeur":5,"type_valeur":"montant","points_requis":-1,"date_expiration":"2027-01-01T00:00:00Z"}`},
		{"bad value type", `{"description":"d","valeur":5,"type_valeur":"euros","points_requis":10,"date_expiration":"2027-01-01T00:00:00Z"}`},
		{"zero value", `{"description":"d","valeur":0,"type_valeur":"montant","points_requis":10,"date_expiration":"2027-01-01T00:00:00Z"}`},
		{"missing expiration", `{"description":"d","valeur":5,"type_valeur":"montant","points_requis":10}`},
	}
	for _, tc := range cases {
		rec, out := doOffer(t, h.Create, http.MethodPost, tc.body, 7, model.RoleMerchant, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, rec.Code)
		}
		if _, ok := out["errors"]; !ok {
			t.Errorf("%s: no field errors", tc.name)
		}
	}
}

func TestUpdateOfferNonOwnerForbidden(t *testing.T) {
	store := newFakeCouponStore(seedCoupon(3, 7, 60))
	h := NewOfferHandler(store, newFakeClients(), nil)

	body := `{"description":"changed","valeur":5,"type_valeur":"montant","points_requis":10,"date_expiration":"2027-01-01T00:00:00Z"}`
	rec, _ := doOffer(t, h.Update, http.MethodPut, body, 8, model.RoleMerchant, idParam(3))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if store.updated {
		t.Error("store mutated despite ownership failure")
	}
}

func TestUpdateOfferUnknown(t *testing.T) {
	h := NewOfferHandler(newFakeCouponStore(), newFakeClients(), nil)
	body := `{"description":"d","valeur":5,"type_valeur":"montant","points_requis":10,"date_expiration":"2027-01-01T00:00:00Z"}`
	rec, _ := doOffer(t, h.Update, http.MethodPut, body, 7, model.RoleMerchant, idParam(99))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteOfferOwnerOnly(t *testing.T) {
	store := newFakeCouponStore(seedCoupon(3, 7, 60))
	h := NewOfferHandler(store, newFakeClients(), nil)

	rec, _ := doOffer(t, h.Delete, http.MethodDelete, "", 8, model.RoleMerchant, idParam(3))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete: status = %d, want 403", rec.Code)
	}
	rec, _ = doOffer(t, h.Delete, http.MethodDelete, "", 7, model.RoleMerchant, idParam(3))
	if rec.Code != http.StatusOK {
		t.Fatalf("owner delete: status = %d, want 200", rec.Code)
	}
	if _, ok := store.coupons[3]; ok {
		t.Error("coupon still present after delete")
	}
}

func TestToggleOffer(t *testing.T) {
	store := newFakeCouponStore(seedCoupon(3, 7, 60))
	h := NewOfferHandler(store, newFakeClients(), nil)

	rec, out := doOffer(t, h.Toggle, http.MethodPatch, "", 7, model.RoleMerchant, idParam(3))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if out["message"] != "offer deactivated" {
		t.Errorf("message = %v, want offer deactivated", out["message"])
	}
	rec, out = doOffer(t, h.Toggle, http.MethodPatch, "", 7, model.RoleMerchant, idParam(3))
	if rec.Code != http.StatusOK || out["message"] != "offer activated" {
		t.Errorf("second toggle: status = %d, message = %v; want 200, offer activated", rec.Code, out["message"])
	}
}

func TestRedeemPublishesEventAndReportsBalance(t *testing.T) {
	store := newFakeCouponStore(seedCoupon(3, 7, 60))
	clients := newFakeClients()
	// Balance as the repository would leave it after the 60-point deduction.
	clients.byEmail["c@x.com"] = model.Client{ID: 5, Email: "c@x.com", Points: 40, Actif: true}

	var published *queue.CouponRedeemedEvent
	pub := func(_ context.Context, ev queue.CouponRedeemedEvent) error {
		published = &ev
		return nil
	}
	h := NewOfferHandler(store, clients, pub)

	rec, out := doOffer(t, h.Redeem, http.MethodPost, "", 5, model.RoleClient, idParam(3))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if pts := out["points_remaining"].(float64); pts != 40 {
		t.Errorf("points_remaining = %v, want 40", pts)
	}
	if published == nil {
		t.Fatal("redemption event not published")
	}
	if published.ClientID != 5 || published.CouponID != 3 || published.MerchantID != 7 {
		t.Errorf("event ids = {%d %d %d}, want {5 3 7}", published.ClientID, published.CouponID, published.MerchantID)
	}
	if published.PointsSpent != 60 || published.PointsRemaining != 40 {
		t.Errorf("event points = {%d %d}, want {60 40}", published.PointsSpent, published.PointsRemaining)
	}
}

func TestRedeemInsufficientPoints(t *testing.T) {
	store := newFakeCouponStore(seedCoupon(3, 7, 60))
	store.redeemErr = repository.ErrInsufficientPoints
	h := NewOfferHandler(store, newFakeClients(), nil)

	rec, out := doOffer(t, h.Redeem, http.MethodPost, "", 5, model.RoleClient, idParam(3))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if out["error"] != "insufficient points" {
		t.Errorf("error = %v, want insufficient points", out["error"])
	}
}

func TestRedeemUnknownOffer(t *testing.T) {
	h := NewOfferHandler(newFakeCouponStore(), newFakeClients(), nil)
	rec, _ := doOffer(t, h.Redeem, http.MethodPost, "", 5, model.RoleClient, idParam(99))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRedeemSurvivesPublishFailure(t *testing.T) {
	store := newFakeCouponStore(seedCoupon(3, 7, 60))
	clients := newFakeClients()
	clients.byEmail["c@x.com"] = model.Client{ID: 5, Email: "c@x.com", Points: 40, Actif: true}
	pub := func(_ context.Context, _ queue.CouponRedeemedEvent) error {
		return errors.New("broker down")
	}
	h := NewOfferHandler(store, clients, pub)

	rec, _ := doOffer(t, h.Redeem, http.MethodPost, "", 5, model.RoleClient, idParam(3))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (publish is fire-and-forget)", rec.Code)
	}
}
