package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fidelipark/loyalty-backend/internal/model"
	"github.com/fidelipark/loyalty-backend/internal/utils"
)

// MerchantRepo reads and writes store accounts in the 'merchants' table.
type MerchantRepo struct{ DB *sql.DB }

func NewMerchantRepo(db *sql.DB) *MerchantRepo { return &MerchantRepo{DB: db} }

const merchantCols = "id,nom_magasin,email,password_hash,adresse,COALESCE(nb_tel,'')," +
	"COALESCE(latitude,0),COALESCE(longitude,0),COALESCE(horaires,''),actif,created_at,updated_at"

func scanMerchant(row *sql.Row) (model.Merchant, error) {
	var m model.Merchant
	err := row.Scan(&m.ID, &m.NomMagasin, &m.Email, &m.PasswordHash, &m.Adresse,
		&m.NbTel, &m.Latitude, &m.Longitude, &m.Horaires, &m.Actif, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// Create inserts a merchant with a freshly hashed password.
func (r *MerchantRepo) Create(ctx context.Context, nomMagasin, adresse, email, password, nbTel string, cost int) (model.Merchant, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.Merchant{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO merchants (nom_magasin, email, password_hash, adresse, nb_tel) VALUES (?,?,?,?,NULLIF(?,''))",
		nomMagasin, email, hash, adresse, nbTel)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Merchant{}, ErrEmailExists
		}
		return model.Merchant{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Merchant{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// FindActiveByEmail fetches an active merchant by normalized email.
// Inactive accounts are reported as ErrNotFound, same as unknown emails.
func (r *MerchantRepo) FindActiveByEmail(ctx context.Context, email string) (model.Merchant, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	m, err := scanMerchant(r.DB.QueryRowContext(ctx,
		"SELECT "+merchantCols+" FROM merchants WHERE email=? AND actif=TRUE LIMIT 1", email))
	if err == sql.ErrNoRows {
		return model.Merchant{}, ErrNotFound
	}
	return m, err
}

// GetByID fetches a merchant by id regardless of active flag.
func (r *MerchantRepo) GetByID(ctx context.Context, id uint64) (model.Merchant, error) {
	m, err := scanMerchant(r.DB.QueryRowContext(ctx,
		"SELECT "+merchantCols+" FROM merchants WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Merchant{}, ErrNotFound
	}
	return m, err
}

// GetActiveByID fetches an active merchant by id, for the browse endpoints.
func (r *MerchantRepo) GetActiveByID(ctx context.Context, id uint64) (model.Merchant, error) {
	m, err := scanMerchant(r.DB.QueryRowContext(ctx,
		"SELECT "+merchantCols+" FROM merchants WHERE id=? AND actif=TRUE LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Merchant{}, ErrNotFound
	}
	return m, err
}

// ListActive returns all active merchants ordered by store name.
func (r *MerchantRepo) ListActive(ctx context.Context) ([]model.Merchant, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+merchantCols+" FROM merchants WHERE actif=TRUE ORDER BY nom_magasin ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Merchant
	for rows.Next() {
		var m model.Merchant
		if err := rows.Scan(&m.ID, &m.NomMagasin, &m.Email, &m.PasswordHash, &m.Adresse,
			&m.NbTel, &m.Latitude, &m.Longitude, &m.Horaires, &m.Actif, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateProfile overwrites a merchant's profile fields and returns the
// updated row.  Ownership is enforced by the handler before this call.
func (r *MerchantRepo) UpdateProfile(ctx context.Context, id uint64, nomMagasin, adresse, nbTel, horaires string, lat, lng float64) (model.Merchant, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE merchants
		 SET nom_magasin=?, adresse=?, nb_tel=NULLIF(?,''), horaires=NULLIF(?,''), latitude=?, longitude=?, updated_at=NOW()
		 WHERE id=?`,
		nomMagasin, adresse, nbTel, horaires, lat, lng, id)
	if err != nil {
		return model.Merchant{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Merchant{}, err
	} else if n == 0 {
		// Row may exist with identical values; confirm before reporting absence.
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Merchant{}, err
		}
	}
	return r.GetByID(ctx, id)
}
