package resilience

import (
	"context"
	"time"
)

// Executor composes the store guards.
// A zero Executor runs operations unguarded.
type Executor struct {
	breaker *Breaker
	retry   *Retry
	timeout *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithBreaker adds a circuit breaker.
func WithBreaker(b *Breaker) ExecutorOption {
	return func(e *Executor) {
		e.breaker = b
	}
}

// WithRetry adds retries.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) {
		e.retry = r
	}
}

// WithTimeout bounds every attempt.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = NewTimeout(d)
	}
}

// Breaker returns the configured breaker, or nil.
func (e *Executor) Breaker() *Breaker {
	return e.breaker
}

// Execute runs op through the configured guards.
//
// Order from outermost to innermost: breaker, retry, timeout. The breaker
// sees one outcome per call, after retries are exhausted; the timeout
// applies to each attempt.
func (e *Executor) Execute(ctx context.Context, op Op) error {
	execute := op

	if e.timeout != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.timeout.Execute(ctx, inner)
		}
	}

	if e.retry != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.retry.Execute(ctx, inner)
		}
	}

	if e.breaker != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.breaker.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}
