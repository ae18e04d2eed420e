package model

import "time"

// Coupon value types.  A coupon is either a fixed amount off or a
// percentage discount.
const (
	ValueTypeAmount     = "montant"
	ValueTypePercentage = "pourcentage"
)

// Coupon represents a discount offer published by a merchant, stored in the
// `coupons` table.  Deleting a coupon is a soft delete: Actif flips to
// false and the row stays for merchant statistics.
type Coupon struct {
	ID             uint64    // coupons.id
	MerchantID     uint64    // coupons.merchant_id
	Description    string    // coupons.description
	Valeur         float64   // coupons.valeur
	TypeValeur     string    // coupons.type_valeur (montant | pourcentage)
	PointsRequis   uint64    // coupons.points_requis
	DateExpiration time.Time // coupons.date_expiration
	Actif          bool      // coupons.actif
	CreatedAt      time.Time // coupons.created_at
	UpdatedAt      time.Time // coupons.updated_at
}

// Redemption records a client spending points on a coupon, stored in the
// `redemptions` table.  Utilise flips to true once the coupon has been
// presented in store.
type Redemption struct {
	ID        uint64    // redemptions.id
	ClientID  uint64    // redemptions.client_id
	CouponID  uint64    // redemptions.coupon_id
	Utilise   bool      // redemptions.utilise
	CreatedAt time.Time // redemptions.created_at
}
