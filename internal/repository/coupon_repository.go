package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/fidelipark/loyalty-backend/internal/model"
)

// CouponRepo manages discount coupons and their redemptions.
type CouponRepo struct{ DB *sql.DB }

func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{DB: db} }

// CouponWithMerchant decorates a coupon with the owning store's public
// fields for the available-offers listing.
type CouponWithMerchant struct {
	model.Coupon
	NomMagasin string
	Adresse    string
	Latitude   float64
	Longitude  float64
}

// MerchantStats aggregates coupon counters for a merchant's dashboard.
type MerchantStats struct {
	TotalOffers  uint64 `json:"total_offers"`
	ActiveOffers uint64 `json:"active_offers"`
	TotalUsage   uint64 `json:"total_usage"`
}

const couponCols = "id,merchant_id,description,valeur,type_valeur,points_requis,date_expiration,actif,created_at,updated_at"

func scanCoupon(sc interface{ Scan(...any) error }) (model.Coupon, error) {
	var c model.Coupon
	err := sc.Scan(&c.ID, &c.MerchantID, &c.Description, &c.Valeur, &c.TypeValeur,
		&c.PointsRequis, &c.DateExpiration, &c.Actif, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts an active coupon for a merchant and returns the stored row.
func (r *CouponRepo) Create(ctx context.Context, merchantID uint64, description string, valeur float64, typeValeur string, pointsRequis uint64, expiration time.Time) (model.Coupon, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO coupons (merchant_id, description, valeur, type_valeur, points_requis, date_expiration, actif) VALUES (?,?,?,?,?,?,TRUE)",
		merchantID, description, valeur, typeValeur, pointsRequis, expiration)
	if err != nil {
		return model.Coupon{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Coupon{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a coupon by id.
func (r *CouponRepo) GetByID(ctx context.Context, id uint64) (model.Coupon, error) {
	c, err := scanCoupon(r.DB.QueryRowContext(ctx,
		"SELECT "+couponCols+" FROM coupons WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Coupon{}, ErrNotFound
	}
	return c, err
}

// OwnerOf returns the merchant id owning a coupon.  Handlers use this for
// ownership checks before mutating.
func (r *CouponRepo) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	var owner uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT merchant_id FROM coupons WHERE id=? LIMIT 1", id).Scan(&owner)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return owner, err
}

// ListByMerchant returns every coupon of a merchant, newest first,
// including inactive and expired ones.
func (r *CouponRepo) ListByMerchant(ctx context.Context, merchantID uint64) ([]model.Coupon, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+couponCols+" FROM coupons WHERE merchant_id=? ORDER BY created_at DESC", merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCoupons(rows)
}

// ListActiveByMerchant returns a merchant's currently redeemable coupons.
func (r *CouponRepo) ListActiveByMerchant(ctx context.Context, merchantID uint64) ([]model.Coupon, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+couponCols+" FROM coupons WHERE merchant_id=? AND actif=TRUE AND date_expiration > NOW() ORDER BY created_at DESC",
		merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCoupons(rows)
}

func collectCoupons(rows *sql.Rows) ([]model.Coupon, error) {
	var out []model.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListAvailable returns all redeemable coupons across active merchants,
// decorated with store info, newest first.
func (r *CouponRepo) ListAvailable(ctx context.Context) ([]CouponWithMerchant, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT c.id,c.merchant_id,c.description,c.valeur,c.type_valeur,c.points_requis,c.date_expiration,c.actif,c.created_at,c.updated_at,
		        m.nom_magasin,m.adresse,COALESCE(m.latitude,0),COALESCE(m.longitude,0)
		 FROM coupons c
		 JOIN merchants m ON c.merchant_id = m.id
		 WHERE c.actif=TRUE AND c.date_expiration > NOW() AND m.actif=TRUE
		 ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CouponWithMerchant
	for rows.Next() {
		var cm CouponWithMerchant
		if err := rows.Scan(&cm.ID, &cm.MerchantID, &cm.Description, &cm.Valeur, &cm.TypeValeur,
			&cm.PointsRequis, &cm.DateExpiration, &cm.Actif, &cm.CreatedAt, &cm.UpdatedAt,
			&cm.NomMagasin, &cm.Adresse, &cm.Latitude, &cm.Longitude); err != nil {
			return nil, err
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

// Update overwrites the mutable fields of a coupon.
func (r *CouponRepo) Update(ctx context.Context, id uint64, description string, valeur float64, typeValeur string, pointsRequis uint64, expiration time.Time) (model.Coupon, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE coupons SET description=?, valeur=?, type_valeur=?, points_requis=?, date_expiration=?, updated_at=NOW() WHERE id=?",
		description, valeur, typeValeur, pointsRequis, expiration, id)
	if err != nil {
		return model.Coupon{}, err
	}
	return r.GetByID(ctx, id)
}

// SoftDelete deactivates a coupon instead of removing the row.
func (r *CouponRepo) SoftDelete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE coupons SET actif=FALSE, updated_at=NOW() WHERE id=?", id)
	return err
}

// Toggle flips a coupon's active flag and returns the stored row.
func (r *CouponRepo) Toggle(ctx context.Context, id uint64) (model.Coupon, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE coupons SET actif = NOT actif, updated_at=NOW() WHERE id=?", id)
	if err != nil {
		return model.Coupon{}, err
	}
	return r.GetByID(ctx, id)
}

// Stats aggregates coupon counters for a merchant.
func (r *CouponRepo) Stats(ctx context.Context, merchantID uint64) (MerchantStats, error) {
	var s MerchantStats
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(actif=TRUE AND date_expiration > NOW()),0) FROM coupons WHERE merchant_id=?",
		merchantID).Scan(&s.TotalOffers, &s.ActiveOffers)
	if err != nil {
		return MerchantStats{}, err
	}
	err = r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM redemptions r
		 JOIN coupons c ON r.coupon_id = c.id
		 WHERE c.merchant_id=? AND r.utilise=TRUE`,
		merchantID).Scan(&s.TotalUsage)
	if err != nil {
		return MerchantStats{}, err
	}
	return s, nil
}

// HasActiveCoupons reports whether a merchant has at least one redeemable
// coupon, for the merchant listing.
func (r *CouponRepo) HasActiveCoupons(ctx context.Context, merchantID uint64) (bool, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM coupons WHERE merchant_id=? AND actif=TRUE AND date_expiration > NOW()",
		merchantID).Scan(&n)
	return n > 0, err
}

// Redeem spends a client's points on a coupon inside one transaction: the
// coupon must still be redeemable, the balance deduction is guarded so
// points never go negative, and the redemption row records the exchange.
func (r *CouponRepo) Redeem(ctx context.Context, clientID, couponID uint64) (model.Coupon, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Coupon{}, err
	}
	defer func() { _ = tx.Rollback() }()

	c, err := scanCoupon(tx.QueryRowContext(ctx,
		"SELECT "+couponCols+" FROM coupons WHERE id=? AND actif=TRUE AND date_expiration > NOW() LIMIT 1",
		couponID))
	if err == sql.ErrNoRows {
		return model.Coupon{}, ErrNotFound
	}
	if err != nil {
		return model.Coupon{}, err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE clients SET points = points - ?, updated_at = NOW() WHERE id=? AND points >= ?",
		c.PointsRequis, clientID, c.PointsRequis)
	if err != nil {
		return model.Coupon{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Coupon{}, err
	}
	if n == 0 {
		return model.Coupon{}, ErrInsufficientPoints
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO redemptions (client_id, coupon_id, utilise) VALUES (?,?,FALSE)",
		clientID, couponID); err != nil {
		return model.Coupon{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Coupon{}, err
	}
	return c, nil
}
