package model

import "time"

// Client represents a customer account as stored in the `clients` table.
// Points is the accumulated reward balance; it is adjusted only through
// guarded UPDATEs and can never go negative.
//
// Fields:
//
//	ID           – primary key identifier.
//	Nom, Prenom  – last and first name.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	NbTel        – optional phone number.
//	Points       – reward point balance (non-negative).
//	Actif        – whether the account may authenticate.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type Client struct {
	ID           uint64    // clients.id
	Nom          string    // clients.nom
	Prenom       string    // clients.prenom
	Email        string    // clients.email
	PasswordHash string    // clients.password_hash
	NbTel        string    // clients.nb_tel (empty when absent)
	Points       uint64    // clients.points
	Actif        bool      // clients.actif
	CreatedAt    time.Time // clients.created_at
	UpdatedAt    time.Time // clients.updated_at
}

// Merchant represents a store account as stored in the `merchants` table.
// Latitude/Longitude and Horaires describe the physical store for the
// browse endpoints.
type Merchant struct {
	ID           uint64    // merchants.id
	NomMagasin   string    // merchants.nom_magasin
	Email        string    // merchants.email
	PasswordHash string    // merchants.password_hash
	Adresse      string    // merchants.adresse
	NbTel        string    // merchants.nb_tel (empty when absent)
	Latitude     float64   // merchants.latitude
	Longitude    float64   // merchants.longitude
	Horaires     string    // merchants.horaires (free-form opening hours)
	Actif        bool      // merchants.actif
	CreatedAt    time.Time // merchants.created_at
	UpdatedAt    time.Time // merchants.updated_at
}

// Admin represents an administrator account.  Admins carry identity fields
// only; they hold no profile data of their own.
type Admin struct {
	ID           uint64    // admins.id
	Email        string    // admins.email
	PasswordHash string    // admins.password_hash
	Actif        bool      // admins.actif
	CreatedAt    time.Time // admins.created_at
	UpdatedAt    time.Time // admins.updated_at
}
