// Package auth resolves API credentials presented on inbound requests to
// the companies that own them.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	// HeaderAPIKey carries the raw company API key.
	HeaderAPIKey = "X-API-Key"
	// HeaderAdminKey carries the administrative credential.
	HeaderAdminKey = "X-Admin-Key"

	// KeyPrefix marks company API keys so operators can tell them apart
	// from other secrets.
	KeyPrefix = "tk_"

	keyBytes = 32
)

// ExtractCredential returns the API key from the X-API-Key header, falling
// back to an "Authorization: Bearer <key>" header. It returns "" when
// neither carries a key.
func ExtractCredential(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(HeaderAPIKey)); key != "" {
		return key
	}
	return bearerToken(r)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GenerateKey returns a new company API key: KeyPrefix followed by 256
// random bits, hex encoded.
func GenerateKey() (string, error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return KeyPrefix + hex.EncodeToString(b), nil
}

// Digest is the stored form of an API key. Lookups compare digests, so the
// raw key never reaches the database.
func Digest(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
