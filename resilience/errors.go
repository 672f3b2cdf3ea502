package resilience

import (
	"context"
	"errors"
)

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the breaker rejects a call.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrTimeout is returned when an operation exceeds its deadline.
	ErrTimeout = errors.New("resilience: operation timed out")

	// ErrBulkheadFull is returned when no bulkhead slot is free.
	ErrBulkheadFull = errors.New("resilience: too many concurrent operations")
)

// Op is an operation guarded by this package.
type Op func(ctx context.Context) error
