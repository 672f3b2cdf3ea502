package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryConfig configures Retry.
type RetryConfig struct {
	// Attempts is the total number of attempts including the first.
	// Default: 3
	Attempts int

	// BaseDelay is the delay before the first retry; it doubles each attempt.
	// Default: 50ms
	BaseDelay time.Duration

	// MaxDelay caps a single delay.
	// Default: 2s
	MaxDelay time.Duration

	// Jitter adds up to 25% random delay.
	Jitter bool

	// Retryable decides whether an error is worth another attempt.
	// Default: any error except ErrCircuitOpen and cancellation.
	Retryable func(err error) bool

	// OnRetry is called before each retry.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry repeats a failed operation with exponential backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a retry policy.
func NewRetry(config RetryConfig) *Retry {
	if config.Attempts <= 0 {
		config.Attempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 50 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 2 * time.Second
	}
	if config.Retryable == nil {
		config.Retryable = func(err error) bool {
			return !errors.Is(err, ErrCircuitOpen) && !errors.Is(err, context.Canceled)
		}
	}
	return &Retry{config: config}
}

// Execute runs op until it succeeds, returns a non-retryable error or the
// attempts are exhausted. The last error is returned.
func (r *Retry) Execute(ctx context.Context, op Op) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt >= r.config.Attempts || ctx.Err() != nil || !r.config.Retryable(err) {
			return err
		}

		delay := r.delay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *Retry) delay(attempt int) time.Duration {
	delay := r.config.BaseDelay
	for i := 1; i < attempt && delay < r.config.MaxDelay; i++ {
		delay *= 2
	}
	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}
	if r.config.Jitter && delay >= 4 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}
	return delay
}
