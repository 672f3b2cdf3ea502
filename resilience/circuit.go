package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the breaker state.
type State int

const (
	// StateClosed passes every call through.
	StateClosed State = iota
	// StateOpen rejects every call until the cooldown elapses.
	StateOpen
	// StateHalfOpen lets a single probe call through.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// Threshold is the number of consecutive failures that opens the breaker.
	// Default: 5
	Threshold int

	// Cooldown is how long the breaker stays open before probing.
	// Default: 30 seconds
	Cooldown time.Duration

	// OnStateChange is called with the lock held; it must not call back
	// into the breaker.
	OnStateChange func(from, to State)

	// IsFailure decides which errors count against the store.
	// Default: any error except the caller's own context cancellation.
	IsFailure func(err error) bool
}

// Breaker is a consecutive-failure circuit breaker.
type Breaker struct {
	config BreakerConfig

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
	now      func() time.Time
	rejected int64
}

// NewBreaker creates a closed breaker.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.Threshold <= 0 {
		config.Threshold = 5
	}
	if config.Cooldown <= 0 {
		config.Cooldown = 30 * time.Second
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		}
	}
	return &Breaker{config: config, now: time.Now}
}

// Execute runs op unless the breaker is open.
func (b *Breaker) Execute(ctx context.Context, op Op) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := op(ctx)
	b.record(err)
	return err
}

// State returns the current state, moving open to half-open once the
// cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

// Rejected returns how many calls were refused while open.
func (b *Breaker) Rejected() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rejected
}

// Reset closes the breaker and clears its failure count.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.probing = false
	b.transition(StateClosed)
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.stateLocked() {
	case StateOpen:
		b.rejected++
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.probing {
			b.rejected++
			return ErrCircuitOpen
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	failed := b.config.IsFailure(err)

	switch b.state {
	case StateHalfOpen:
		b.probing = false
		if failed {
			b.openedAt = b.now()
			b.transition(StateOpen)
			return
		}
		b.failures = 0
		b.transition(StateClosed)

	case StateClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.config.Threshold {
			b.openedAt = b.now()
			b.transition(StateOpen)
		}
	}
}

func (b *Breaker) stateLocked() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.config.Cooldown {
		b.probing = false
		b.transition(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	if from != to && b.config.OnStateChange != nil {
		b.config.OnStateChange(from, to)
	}
}
