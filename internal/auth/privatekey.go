package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

// Private account key format: sk_{prefix}_{secret}
// Example: sk_7a9x3k_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
//
// Only the Argon2id hash is stored; the prefix is kept alongside it so
// candidates can be fetched without a full scan.
const (
	PrivatePrefixLen = 6  // hex encoded 3 bytes
	PrivateSecretLen = 32 // hex encoded 16 bytes
)

var privateKeyRegex = regexp.MustCompile(`^sk_([a-f0-9]{6})_([a-f0-9]{32})$`)

// GeneratedPrivateKey contains the parts of a newly issued private key.
type GeneratedPrivateKey struct {
	Plaintext string // Full key (show once only)
	Hash      string // Argon2id hash for storage
	Prefix    string // Visible prefix for lookup
}

// GeneratePrivateKey issues a fresh private account key. The plaintext
// is returned exactly once; the store keeps only prefix and hash.
func GeneratePrivateKey() (*GeneratedPrivateKey, error) {
	prefixBytes := make([]byte, PrivatePrefixLen/2)
	if _, err := rand.Read(prefixBytes); err != nil {
		return nil, fmt.Errorf("generate prefix: %w", err)
	}
	prefix := hex.EncodeToString(prefixBytes)

	secretBytes := make([]byte, PrivateSecretLen/2)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	plaintext := fmt.Sprintf("sk_%s_%s", prefix, hex.EncodeToString(secretBytes))

	hash, err := HashSecret(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hash key: %w", err)
	}

	return &GeneratedPrivateKey{
		Plaintext: plaintext,
		Hash:      hash,
		Prefix:    prefix,
	}, nil
}

// ParsePrivateKey extracts the lookup prefix from a presented private
// key. Returns ErrInvalidKeyFormat for anything else.
func ParsePrivateKey(key string) (prefix string, err error) {
	matches := privateKeyRegex.FindStringSubmatch(key)
	if matches == nil {
		return "", ErrInvalidKeyFormat
	}
	return matches[1], nil
}
