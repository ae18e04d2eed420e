package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// BlacklistRepo records revoked session tokens in Redis.  Entries are keyed
// by the literal bearer string, so two tokens for the same account are
// independently revocable and no claim manipulation can dodge a lookup.
// Redis expires each entry on its own; no sweep job exists.
type BlacklistRepo struct{ RDB *redis.Client }

func NewBlacklistRepo(rdb *redis.Client) *BlacklistRepo { return &BlacklistRepo{RDB: rdb} }

const blacklistPrefix = "blacklist:"

// Revoke writes a blacklist marker whose TTL equals the token's remaining
// lifetime.  Revoking an already-revoked token rewrites the marker, which
// makes the call idempotent.  Any Redis failure is returned to the caller:
// a logout that cannot be recorded must not report success.
func (r *BlacklistRepo) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl < time.Second {
		// An almost-expired token still gets a marker so the revocation is
		// observable on the very next request.
		ttl = time.Second
	}
	return r.RDB.Set(ctx, blacklistPrefix+token, "revoked", ttl).Err()
}

// IsRevoked reports whether a token carries a blacklist marker.  Lookup
// failures are returned as errors, never as "not revoked".
func (r *BlacklistRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.RDB.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
