// Package queue defines message payloads exchanged over the message broker.
package queue

// CouponRedeemedEvent is published when a client successfully spends points
// on a coupon.  It carries enough information for downstream consumers to
// log or feed analytics without querying the primary database.
type CouponRedeemedEvent struct {
	ClientID        uint64  `json:"client_id"`
	ClientEmail     string  `json:"client_email"`
	CouponID        uint64  `json:"coupon_id"`
	MerchantID      uint64  `json:"merchant_id"`
	Description     string  `json:"description"`
	Valeur          float64 `json:"valeur"`
	TypeValeur      string  `json:"type_valeur"`
	PointsSpent     uint64  `json:"points_spent"`
	PointsRemaining uint64  `json:"points_remaining"`
	RedeemedAt      string  `json:"redeemed_at"`
}
