package memo

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a store key.
const MaxKeyLength = 512

// Sentinel errors for memo operations.
var (
	ErrNilStore     = errors.New("memo: store is nil")
	ErrNilTransform = errors.New("memo: transform is nil")
	ErrInvalidKey   = errors.New("memo: key is invalid")
	ErrKeyTooLong   = errors.New("memo: key exceeds max length")

	// ErrCacheUnavailable reports that the store could not serve a request.
	// Every *StoreError matches it via errors.Is.
	ErrCacheUnavailable = errors.New("memo: cache unavailable")
)

// Store is the key/value collaborator behind a Memo.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Misses: Get returns (nil, false, nil) when the key is absent.
// - Errors: a non-nil error means the store itself is unavailable.
// - Retention: Set never expires entries; eviction is the store's own concern.
type Store interface {
	// Get retrieves a stored value.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with no expiration.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a stored value. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreError wraps a failure reported by a Store.
type StoreError struct {
	Op  string // get|set|delete
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("memo: store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports every StoreError as ErrCacheUnavailable.
func (e *StoreError) Is(target error) bool {
	return target == ErrCacheUnavailable
}

// ValidateKey checks if a key is valid for storage.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

// NopStore never stores anything. Every Get is a miss.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NopStore) Set(context.Context, string, []byte) error         { return nil }
func (NopStore) Delete(context.Context, string) error              { return nil }

var _ Store = NopStore{}
