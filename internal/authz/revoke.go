package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "authz:revoked:"

// Revoker tracks revoked token IDs in Redis until their natural expiry.
// Logout revokes the presented token; authentication rejects revoked
// tokens even though their signature still verifies.
type Revoker struct {
	client *redis.Client
}

// NewRevoker constructs a Revoker.
func NewRevoker(client *redis.Client) *Revoker {
	return &Revoker{client: client}
}

// Revoke marks a token ID as revoked until the token would expire anyway.
func (r *Revoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("authz: revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token ID has been revoked. A Redis failure
// surfaces as an error so callers fail closed instead of treating the
// token as valid.
func (r *Revoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("authz: check revocation: %w", err)
	}
	return n > 0, nil
}
