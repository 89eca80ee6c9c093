package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/geoforest/billing/internal/config"
)

// HashAPIKey creates a SHA-256 hash of the API key
func HashAPIKey(key string) string {
	hasher := sha256.New()
	hasher.Write([]byte(key))
	return hex.EncodeToString(hasher.Sum(nil))
}

// GenerateAPIKey generates a new API key
// The key is returned in its raw form, it should be hashed before storing in config
func GenerateAPIKey() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	return hex.EncodeToString(key)
}

// ValidateTriggerKey checks a key presented by the identity trigger against
// the configured hashes and returns the name of the matching key
func ValidateTriggerKey(cfg *config.Configuration, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	if details, exists := cfg.Auth.TriggerKeys[HashAPIKey(key)]; exists && details.IsActive {
		return details.Name, true
	}
	return "", false
}
