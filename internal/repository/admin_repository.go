package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fidelipark/loyalty-backend/internal/model"
)

// AdminRepo reads administrator accounts.  Admins are provisioned out of
// band, so there is no Create here; the repo only serves login.
type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

// FindActiveByEmail fetches an active admin by normalized email.  As with
// the other account tables, inactive rows are indistinguishable from
// missing ones.
func (r *AdminRepo) FindActiveByEmail(ctx context.Context, email string) (model.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var a model.Admin
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,actif,created_at,updated_at FROM admins WHERE email=? AND actif=TRUE LIMIT 1",
		email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Actif, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Admin{}, ErrNotFound
	}
	return a, err
}
