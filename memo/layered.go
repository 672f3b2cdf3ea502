package memo

import (
	"context"
	"errors"
)

// LayeredStore puts a fast local store (L1) in front of a shared store (L2).
//
// Reads try L1, then L2; an L2 hit is backfilled into L1. Writes go to both
// (write-through). L1 is a best-effort accelerator: its failures are ignored.
// L2 is the source of truth: its failures are returned.
type LayeredStore struct {
	l1 Store
	l2 Store
}

// NewLayeredStore creates a layered store. Either layer may be nil.
func NewLayeredStore(l1, l2 Store) *LayeredStore {
	return &LayeredStore{l1: l1, l2: l2}
}

// Get retrieves a value (L1 -> L2 -> miss).
func (s *LayeredStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.l1 != nil {
		if val, ok, err := s.l1.Get(ctx, key); err == nil && ok {
			return val, true, nil
		}
	}

	if s.l2 == nil {
		return nil, false, nil
	}

	val, ok, err := s.l2.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	// Backfill L1 on L2 hit
	if s.l1 != nil {
		_ = s.l1.Set(ctx, key, val)
	}
	return val, true, nil
}

// Set stores a value in both layers.
func (s *LayeredStore) Set(ctx context.Context, key string, value []byte) error {
	if s.l2 != nil {
		if err := s.l2.Set(ctx, key, value); err != nil {
			return err
		}
	}
	if s.l1 != nil {
		_ = s.l1.Set(ctx, key, value)
	}
	return nil
}

// Delete removes a value from both layers.
func (s *LayeredStore) Delete(ctx context.Context, key string) error {
	var l1Err, l2Err error
	if s.l1 != nil {
		l1Err = s.l1.Delete(ctx, key)
	}
	if s.l2 != nil {
		l2Err = s.l2.Delete(ctx, key)
	}
	return errors.Join(l2Err, l1Err)
}

// Ping checks the shared layer, or L1 when there is none.
func (s *LayeredStore) Ping(ctx context.Context) error {
	target := s.l2
	if target == nil {
		target = s.l1
	}
	if p, ok := target.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// InvalidateL1 drops a key from the local layer only, forcing the next read
// to consult L2.
func (s *LayeredStore) InvalidateL1(ctx context.Context, key string) error {
	if s.l1 != nil {
		return s.l1.Delete(ctx, key)
	}
	return nil
}

var (
	_ Store  = (*LayeredStore)(nil)
	_ Pinger = (*LayeredStore)(nil)
)
