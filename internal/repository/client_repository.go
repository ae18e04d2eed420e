package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fidelipark/loyalty-backend/internal/model"
	"github.com/fidelipark/loyalty-backend/internal/utils"
)

// ClientRepo reads and writes customer accounts in the 'clients' table.
type ClientRepo struct{ DB *sql.DB }

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{DB: db} }

const clientCols = "id,nom,prenom,email,password_hash,COALESCE(nb_tel,''),points,actif,created_at,updated_at"

func scanClient(row *sql.Row) (model.Client, error) {
	var c model.Client
	err := row.Scan(&c.ID, &c.Nom, &c.Prenom, &c.Email, &c.PasswordHash,
		&c.NbTel, &c.Points, &c.Actif, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a client with a freshly hashed password and a zero point
// balance, returning the stored row.
func (r *ClientRepo) Create(ctx context.Context, nom, prenom, email, password, nbTel string, cost int) (model.Client, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.Client{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO clients (nom, prenom, email, password_hash, nb_tel, points) VALUES (?,?,?,?,NULLIF(?,''),0)",
		nom, prenom, email, hash, nbTel)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Client{}, ErrEmailExists
		}
		return model.Client{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Client{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// FindActiveByEmail fetches an active client by normalized email.  Inactive
// accounts come back as ErrNotFound so login treats them exactly like
// unknown emails.
func (r *ClientRepo) FindActiveByEmail(ctx context.Context, email string) (model.Client, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	c, err := scanClient(r.DB.QueryRowContext(ctx,
		"SELECT "+clientCols+" FROM clients WHERE email=? AND actif=TRUE LIMIT 1", email))
	if err == sql.ErrNoRows {
		return model.Client{}, ErrNotFound
	}
	return c, err
}

// GetByID fetches a client by id.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (model.Client, error) {
	c, err := scanClient(r.DB.QueryRowContext(ctx,
		"SELECT "+clientCols+" FROM clients WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Client{}, ErrNotFound
	}
	return c, err
}

// AwardPoints adds points to a client's balance.
func (r *ClientRepo) AwardPoints(ctx context.Context, id uint64, points uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE clients SET points = points + ?, updated_at = NOW() WHERE id=?",
		points, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
