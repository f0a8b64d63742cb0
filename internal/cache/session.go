package cache

import (
	"context"
	"time"
)

// Key prefixes for session-related state.
const (
	revokedTokenPrefix = "session:revoked:"
	oauthStatePrefix   = "oauth:state:"
	resetTokenPrefix   = "reset:token:"
)

// RevokeToken marks a JWT (by its jti) as revoked until it would have
// expired anyway.
func (c *Cache) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedTokenPrefix+tokenID, "1", ttl).Err()
}

// IsTokenRevoked reports whether a JWT has been revoked. Lookup errors
// fail open; the token signature and expiry are still enforced.
func (c *Cache) IsTokenRevoked(ctx context.Context, tokenID string) bool {
	n, err := c.client.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// SaveOAuthState stores a federated sign-in state nonce for callback
// verification.
func (c *Cache) SaveOAuthState(ctx context.Context, state, nonce string, ttl time.Duration) error {
	return c.client.Set(ctx, oauthStatePrefix+state, nonce, ttl).Err()
}

// ConsumeOAuthState retrieves and deletes a federated sign-in state,
// returning the nonce bound to it. Returns ErrCacheMiss for unknown or
// already-consumed state.
func (c *Cache) ConsumeOAuthState(ctx context.Context, state string) (string, error) {
	nonce, err := c.client.GetDel(ctx, oauthStatePrefix+state).Result()
	if err != nil {
		return "", ErrCacheMiss
	}
	return nonce, nil
}

// SaveResetToken stores a password-reset token for a user.
func (c *Cache) SaveResetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	return c.client.Set(ctx, resetTokenPrefix+token, userID, ttl).Err()
}

// ConsumeResetToken retrieves and deletes a password-reset token,
// returning the user it was issued for. Returns ErrCacheMiss for
// unknown or expired tokens.
func (c *Cache) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	userID, err := c.client.GetDel(ctx, resetTokenPrefix+token).Result()
	if err != nil {
		return "", ErrCacheMiss
	}
	return userID, nil
}
