// Package memo provides content-addressed memoization for deterministic text
// transforms.
//
// A Memo wraps a Transform and a Store. Each call derives a key from a SHA-256
// fingerprint of the input text plus a scope identifier, returns the stored
// Result on a hit, and on a miss invokes the transform, stores the Result with
// no expiration and returns it. Entries are immutable: changed input produces
// a new key rather than an overwrite, and eviction is left to the Store.
//
// Transform errors are never cached. Store failures either fail the call with
// ErrCacheUnavailable or degrade to compute-without-cache, depending on the
// configured FailurePolicy.
//
// Concurrent misses on the same key are not coalesced by default: both callers
// run the transform and the last write wins. Because transforms are required
// to be deterministic the duplicate work never changes the answer. Hosts that
// want coalescing can opt in with WithSingleflight.
//
// Stores provided: MemoryStore (process-local, optional LRU bound), RedisStore
// (shared), LayeredStore (memory in front of a shared store), GuardedStore
// (timeout and circuit breaker around any store) and NopStore.
package memo
