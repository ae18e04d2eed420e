package utils // package utils provides helpers for token creation and hashing

import (
	"errors" // errors.Is distinguishes expiry from other parse failures
	"time"   // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SessionClaims is the claim set carried by a session token.  The JSON
// names (userId, userType, email) are part of the external contract and
// must not change; clients decode them directly.
type SessionClaims struct {
	UserID uint64 `json:"userId"`
	Role   string `json:"userType"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SessionToken bundles a signed token string with its expiration so
// callers can compute the remaining lifetime without reparsing.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// ErrTokenExpired is returned by ParseSessionToken when the token was
// well-formed and correctly signed but past its expiry.  Callers map it to
// 401 so clients know to log in again, as opposed to 403 for a token that
// was never valid.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenInvalid covers every other parse failure: malformed input, wrong
// signing method, bad signature.
var ErrTokenInvalid = errors.New("token invalid")

// NewSessionToken builds and signs an HS256 JWT for an account.  The token
// carries the subject id, the canonical role tag and the account email,
// and lives for ttlDays from issuance.
func NewSessionToken(secret string, userID uint64, role, email string, ttlDays int) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := SessionClaims{
		UserID: userID,
		Role:   role,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken validates signature and expiry and returns the decoded
// claims.  Expired tokens come back as ErrTokenExpired; everything else as
// ErrTokenInvalid.  Revocation is not checked here — the verifier
// middleware consults the blacklist on the raw string before trusting any
// parse result.
func ParseSessionToken(secret, raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tok.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
