package resilience

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds a store call when no timeout is configured.
const DefaultTimeout = time.Second

// Timeout bounds an operation with a context deadline.
//
// The operation runs on the calling goroutine and must honor ctx; the
// store clients used with this package (go-redis, in-memory) do.
type Timeout struct {
	d time.Duration
}

// NewTimeout creates a timeout. d <= 0 uses DefaultTimeout.
func NewTimeout(d time.Duration) *Timeout {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &Timeout{d: d}
}

// Duration returns the configured bound.
func (t *Timeout) Duration() time.Duration { return t.d }

// Execute runs op with a derived deadline. An expired deadline that belongs
// to this timeout (not to the parent context) is reported as ErrTimeout.
func (t *Timeout) Execute(ctx context.Context, op Op) error {
	tctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	err := op(tctx)
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	return err
}
