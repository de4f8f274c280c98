// Package auth provides credential handling and tenant resolution.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Public project key format: pk_{accountID}.{secret}
// Example: pk_4f3KxQzM8n1WbTcHu9.4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
//
// The dot delimiter splits the account id from the project-scoped
// secret without a store lookup. Account ids are identity-provider
// subjects (URL-safe, up to 64 chars); the secret is 16 random bytes
// hex encoded.
const (
	PublicSecretLen = 32 // hex encoded 16 bytes
	MaxAccountIDLen = 64
)

var (
	// ErrInvalidKeyFormat indicates a key that does not decode.
	ErrInvalidKeyFormat = errors.New("invalid API key format")

	publicKeyRegex = regexp.MustCompile(`^pk_([A-Za-z0-9_-]{1,64})\.([a-f0-9]{32})$`)
	accountIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// NewPublicSecret generates a fresh project-scoped secret.
func NewPublicSecret() (string, error) {
	b := make([]byte, PublicSecretLen/2)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate public secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// EncodePublicKey assembles the opaque public key token presented by
// lead submitters. Both parts are validated so every encoded token is
// guaranteed to decode back to the same pair.
func EncodePublicKey(accountID, secret string) (string, error) {
	if !accountIDRegex.MatchString(accountID) {
		return "", ErrInvalidKeyFormat
	}
	if len(secret) != PublicSecretLen || !isLowerHex(secret) {
		return "", ErrInvalidKeyFormat
	}
	return "pk_" + accountID + "." + secret, nil
}

// DecodePublicKey splits an opaque public key token into account id
// and secret. Malformed input returns ErrInvalidKeyFormat, never
// panics.
func DecodePublicKey(token string) (accountID, secret string, err error) {
	matches := publicKeyRegex.FindStringSubmatch(token)
	if matches == nil {
		return "", "", ErrInvalidKeyFormat
	}
	return matches[1], matches[2], nil
}

func isLowerHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
