package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// Cache key prefixes and TTLs for API key resolution.
const (
	apiKeyLookupPrefix = "ffkey:user:"

	// APIKeyLookupTTL is the TTL for cached key-to-user resolutions.
	APIKeyLookupTTL = 5 * time.Minute
)

// ErrCacheMiss indicates the requested entry is not cached.
var ErrCacheMiss = errors.New("cache miss")

// hashAPIKey derives the Redis key for an API key lookup. The raw key
// is a secret, so only its digest goes into the keyspace.
func hashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

// GetUserIDByAPIKey retrieves a cached API-key-to-user resolution.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetUserIDByAPIKey(ctx context.Context, apiKey string) (string, error) {
	userID, err := c.client.Get(ctx, apiKeyLookupPrefix+hashAPIKey(apiKey)).Result()
	if err != nil {
		return "", ErrCacheMiss
	}
	return userID, nil
}

// SetUserIDByAPIKey caches an API-key-to-user resolution.
func (c *Cache) SetUserIDByAPIKey(ctx context.Context, apiKey, userID string) error {
	return c.client.Set(ctx, apiKeyLookupPrefix+hashAPIKey(apiKey), userID, APIKeyLookupTTL).Err()
}

// InvalidateAPIKey drops a cached resolution after the stored key
// changes.
func (c *Cache) InvalidateAPIKey(ctx context.Context, apiKey string) error {
	return c.client.Del(ctx, apiKeyLookupPrefix+hashAPIKey(apiKey)).Err()
}
