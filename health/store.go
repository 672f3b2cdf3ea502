package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/textops/memo"
	"github.com/jonwraymond/textops/resilience"
)

// StoreChecker pings a memo store.
type StoreChecker struct {
	name    string
	store   memo.Pinger
	timeout time.Duration
	policy  memo.FailurePolicy
}

// NewStoreChecker creates a checker that pings store. timeout <= 0 means 2s.
func NewStoreChecker(name string, store memo.Pinger, timeout time.Duration) *StoreChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &StoreChecker{name: name, store: store, timeout: timeout}
}

// WithPolicy sets the failure policy of the memo using the store. Default:
// memo.FailClosed.
func (c *StoreChecker) WithPolicy(p memo.FailurePolicy) *StoreChecker {
	c.policy = p
	return c
}

// Name returns the name of this checker.
func (c *StoreChecker) Name() string {
	return c.name
}

// Check pings the store. A failed ping is Unhealthy under memo.FailClosed,
// where every memoized render fails with it, and Degraded under
// memo.FailOpen, where renders still succeed uncached.
func (c *StoreChecker) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	if err := c.store.Ping(ctx); err != nil {
		if c.policy == memo.FailOpen {
			res := Degraded("store unreachable, serving uncached")
			res.Error = fmt.Errorf("%w: %v", ErrCheckFailed, err)
			return res.WithDetails(map[string]any{"policy": c.policy.String()})
		}
		return Unhealthy("store unreachable", fmt.Errorf("%w: %v", ErrCheckFailed, err))
	}
	return Healthy("store reachable").WithDetails(map[string]any{
		"latency": time.Since(start).String(),
	})
}

// BreakerChecker reports the state of a store circuit breaker.
type BreakerChecker struct {
	name    string
	breaker *resilience.Breaker
}

// NewBreakerChecker creates a breaker checker. A nil breaker is always healthy.
func NewBreakerChecker(name string, b *resilience.Breaker) *BreakerChecker {
	return &BreakerChecker{name: name, breaker: b}
}

// Name returns the name of this checker.
func (c *BreakerChecker) Name() string {
	return c.name
}

// Check maps closed to Healthy and open or half-open to Degraded.
func (c *BreakerChecker) Check(context.Context) Result {
	if c.breaker == nil {
		return Healthy("no breaker configured")
	}

	state := c.breaker.State()
	details := map[string]any{
		"state":    state.String(),
		"rejected": c.breaker.Rejected(),
	}
	if state == resilience.StateClosed {
		return Healthy("circuit closed").WithDetails(details)
	}
	return Degraded("circuit " + state.String()).WithDetails(details)
}

var (
	_ Checker = (*StoreChecker)(nil)
	_ Checker = (*BreakerChecker)(nil)
)
