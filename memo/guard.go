package memo

import (
	"context"

	"github.com/jonwraymond/textops/resilience"
)

// GuardedStore runs every call of the wrapped store through a
// resilience.Executor. A timeout or an open breaker surfaces as a
// *StoreError, so a Memo treats it as ErrCacheUnavailable.
//
// A miss is not a failure and never trips the breaker.
type GuardedStore struct {
	store Store
	exec  *resilience.Executor
}

// NewGuardedStore wraps store. A nil executor runs calls unguarded.
func NewGuardedStore(store Store, exec *resilience.Executor) *GuardedStore {
	if exec == nil {
		exec = resilience.NewExecutor()
	}
	return &GuardedStore{store: store, exec: exec}
}

func (g *GuardedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		val []byte
		ok  bool
	)
	err := g.exec.Execute(ctx, func(ctx context.Context) error {
		var err error
		val, ok, err = g.store.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, false, &StoreError{Op: "get", Key: key, Err: err}
	}
	return val, ok, nil
}

func (g *GuardedStore) Set(ctx context.Context, key string, value []byte) error {
	err := g.exec.Execute(ctx, func(ctx context.Context) error {
		return g.store.Set(ctx, key, value)
	})
	if err != nil {
		return &StoreError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (g *GuardedStore) Delete(ctx context.Context, key string) error {
	err := g.exec.Execute(ctx, func(ctx context.Context) error {
		return g.store.Delete(ctx, key)
	})
	if err != nil {
		return &StoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Ping pings the wrapped store if it implements Pinger. It bypasses the
// breaker so health checks keep probing while the circuit is open.
func (g *GuardedStore) Ping(ctx context.Context) error {
	if p, ok := g.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Breaker returns the executor's breaker, or nil.
func (g *GuardedStore) Breaker() *resilience.Breaker {
	return g.exec.Breaker()
}

var (
	_ Store  = (*GuardedStore)(nil)
	_ Pinger = (*GuardedStore)(nil)
)
