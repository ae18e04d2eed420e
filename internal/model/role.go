package model

// Canonical role tags carried in the session token's userType claim.  The
// gates compare against these exact strings; no alternate spellings are
// accepted anywhere in the service.
const (
	RoleClient   = "CLIENT"
	RoleMerchant = "MERCHANT"
	RoleAdmin    = "ADMIN"
)

// ValidRole reports whether tag is one of the canonical role constants.
func ValidRole(tag string) bool {
	switch tag {
	case RoleClient, RoleMerchant, RoleAdmin:
		return true
	}
	return false
}
