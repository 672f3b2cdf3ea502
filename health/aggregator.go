package health

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultCheckTimeout bounds one CheckAll call.
const DefaultCheckTimeout = 5 * time.Second

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// Timeout bounds every CheckAll call. Default: 5 seconds.
	Timeout time.Duration

	// Parallel runs checks concurrently. Default: true.
	Parallel bool
}

// Aggregator runs registered checkers and folds their results.
type Aggregator struct {
	config   AggregatorConfig
	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string
}

// NewAggregator creates a new health aggregator.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	cfg := AggregatorConfig{Timeout: DefaultCheckTimeout, Parallel: true}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Timeout <= 0 {
			cfg.Timeout = DefaultCheckTimeout
		}
	}
	return &Aggregator{config: cfg, checkers: make(map[string]Checker)}
}

// Register adds or replaces a named checker.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = checker
}

// CheckerNames returns checker names in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.order...)
}

// Check runs a single named health check.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()
	if !ok {
		return Result{}, ErrCheckerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()
	return runCheck(ctx, checker), nil
}

// CheckAll runs every registered check and returns results keyed by name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	names := append([]string(nil), a.order...)
	checkers := make([]Checker, len(names))
	for i, name := range names {
		checkers[i] = a.checkers[name]
	}
	a.mu.RUnlock()

	results := make(map[string]Result, len(names))
	if len(names) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	if !a.config.Parallel {
		for i, name := range names {
			results[name] = runCheck(ctx, checkers[i])
		}
		return results
	}

	out := make([]Result, len(names))
	var wg sync.WaitGroup
	for i := range checkers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = runCheck(ctx, checkers[i])
		}(i)
	}
	wg.Wait()

	for i, name := range names {
		results[name] = out[i]
	}
	return results
}

// OverallStatus returns the worst status in results. No results is Healthy.
func OverallStatus(results map[string]Result) Status {
	overall := StatusHealthy
	for _, result := range results {
		if result.Status > overall {
			overall = result.Status
		}
	}
	return overall
}

// runCheck runs checker on the caller goroutine. A check that returns after
// ctx expired is reported as timed out regardless of its own verdict.
func runCheck(ctx context.Context, checker Checker) Result {
	start := time.Now()
	result := checker.Check(ctx)
	result.Duration = time.Since(start)
	if result.Timestamp.IsZero() {
		result.Timestamp = start
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) && result.Status != StatusUnhealthy {
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  result.Duration,
			Timestamp: start,
		}
	}
	return result
}
