package memo

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", ErrInvalidKey},
		{"valid key", "textops:abc123-doc-1", nil},
		{"too long", strings.Repeat("x", MaxKeyLength+1), ErrKeyTooLong},
		{"contains newline", "key\nwith\nnewlines", ErrInvalidKey},
		{"contains carriage return", "key\rwith\rreturns", ErrInvalidKey},
		{"whitespace only", "   ", ErrInvalidKey},
		{"max length exactly", strings.Repeat("x", MaxKeyLength), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKey() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&StoreError{Op: "get", Key: "k", Err: cause})

	if !errors.Is(err, ErrCacheUnavailable) {
		t.Error("StoreError should match ErrCacheUnavailable")
	}
	if !errors.Is(err, cause) {
		t.Error("StoreError should unwrap to its cause")
	}
	if got := err.Error(); got != `memo: store get "k": connection refused` {
		t.Errorf("Error() = %q", got)
	}
}

func TestNopStore(t *testing.T) {
	ctx := context.Background()
	var s NopStore

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Errorf("Get() = ok %v, err %v; want miss", ok, err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}
