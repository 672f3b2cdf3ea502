package memo

import (
	"crypto/sha256"
	"encoding/hex"
)

// Keyer derives store keys from a scope and the text being transformed.
//
// Contract:
// - Determinism: the same scope and text must always produce the same key.
// - Isolation: different scopes with identical text must produce different keys.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a store key for text within scope.
	Key(scope, text string) (string, error)
}

// DefaultKeyer generates SHA-256 content keys.
type DefaultKeyer struct {
	// Prefix is prepended to every key, e.g. a namespace shared by all
	// processes writing to the same store.
	Prefix string
}

// NewDefaultKeyer creates a keyer with the given key prefix.
func NewDefaultKeyer(prefix string) *DefaultKeyer {
	return &DefaultKeyer{Prefix: prefix}
}

// Key generates a deterministic key.
// Format: <prefix><fingerprint>-<scope>
// where fingerprint is the 64 hex character SHA-256 of the text bytes.
// The fingerprint has a fixed width, so any scope string is unambiguous.
func (k *DefaultKeyer) Key(scope, text string) (string, error) {
	key := k.Prefix + Fingerprint(text) + "-" + scope
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// Fingerprint returns the hex SHA-256 digest of text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
