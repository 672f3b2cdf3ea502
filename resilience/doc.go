// Package resilience guards calls to a cache store.
//
// The memo core never retries on its own; a host that sits on a remote or
// flaky store composes the patterns here and applies them with
// memo.GuardedStore:
//
//   - Timeout bounds each store call with a context deadline and reports
//     ErrTimeout when it expires.
//
//   - Breaker stops calling a store after consecutive failures and probes it
//     again once a cooldown has elapsed.
//
//   - Retry repeats a failed call with exponential backoff.
//
// Bulkhead is applied by the server rather than the store: it caps how many
// CPU-bound requests (diffs and transforms) run at once.
//
// # Usage
//
//	exec := resilience.NewExecutor(
//	    resilience.WithBreaker(resilience.NewBreaker(resilience.BreakerConfig{
//	        Threshold: 5,
//	        Cooldown:  10 * time.Second,
//	    })),
//	    resilience.WithTimeout(250*time.Millisecond),
//	)
//
//	store := memo.NewGuardedStore(redisStore, exec)
//
// Every pattern runs the operation on the calling goroutine, so values
// captured by the operation closure are never written after Execute returns.
package resilience
