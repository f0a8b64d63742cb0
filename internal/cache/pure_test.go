package cache

import (
	"testing"
)

func TestHashAPIKey_Deterministic(t *testing.T) {
	t.Parallel()

	key := "ff-secret-key-123"

	hash1 := hashAPIKey(key)
	hash2 := hashAPIKey(key)

	if hash1 != hash2 {
		t.Error("same key should produce same hash")
	}
}

func TestHashAPIKey_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
	}{
		{"typical", "ff-abc123"},
		{"long", "a-very-long-fireflies-api-key-value-with-many-characters"},
		{"empty", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := hashAPIKey(tt.key)
			// SHA256 encoded as 64 hex chars
			if len(hash) != 64 {
				t.Errorf("hashAPIKey(%q) length = %d, want 64", tt.key, len(hash))
			}
		})
	}
}

func TestHashAPIKey_DifferentKeysDiffer(t *testing.T) {
	t.Parallel()

	if hashAPIKey("key-a") == hashAPIKey("key-b") {
		t.Error("different keys should produce different hashes")
	}
}

func TestHashAPIKey_RawKeyNotEmbedded(t *testing.T) {
	t.Parallel()

	key := "ff-super-secret"
	hash := hashAPIKey(key)
	if hash == key {
		t.Error("hash must not equal the raw key")
	}
}
