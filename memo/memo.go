package memo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/textops/observe"
)

const component = "memo"

// Result is the value a Transform produces and a Memo stores.
//
// Output is the primary rendered text. Data carries side-channel values
// (extracted references and the like). Data must be JSON-encodable to be
// cached. GetOrCompute and Render return the stored form on a miss as well
// as a hit, so Data numbers are float64 and arrays are []any either way.
type Result struct {
	Output string         `json:"output"`
	Data   map[string]any `json:"data,omitempty"`
}

// Transform is the deterministic collaborator whose output a Memo caches.
//
// Contract:
// - Determinism: the same scope and text must always produce the same Result.
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: returned errors are never cached.
type Transform interface {
	Transform(ctx context.Context, scope, text string) (Result, error)
}

// TransformFunc adapts a function to the Transform interface.
type TransformFunc func(ctx context.Context, scope, text string) (Result, error)

// Transform calls f(ctx, scope, text).
func (f TransformFunc) Transform(ctx context.Context, scope, text string) (Result, error) {
	return f(ctx, scope, text)
}

// TransformError attributes a transform failure to the scope and content
// that caused it.
type TransformError struct {
	Scope       string
	Fingerprint string
	Err         error
}

func (e *TransformError) Error() string {
	fp := e.Fingerprint
	if len(fp) > 12 {
		fp = fp[:12]
	}
	return fmt.Sprintf("memo: transform failed for scope %q content %s: %v", e.Scope, fp, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// Memo caches the results of a Transform in a Store.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: ctx is passed to the store and the transform.
//   - Errors: transform failures are *TransformError; store failures match
//     ErrCacheUnavailable under FailClosed.
type Memo struct {
	store     Store
	transform Transform
	keyer     Keyer
	policy    FailurePolicy
	logger    observe.Logger
	mw        *observe.Middleware
	inner     *observe.Middleware
	group     *singleflight.Group
}

// Option configures a Memo.
type Option func(*Memo)

// WithKeyer replaces the DefaultKeyer.
func WithKeyer(k Keyer) Option {
	return func(m *Memo) {
		if k != nil {
			m.keyer = k
		}
	}
}

// WithFailurePolicy sets the store failure policy. Default: FailClosed.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(m *Memo) {
		m.policy = p
	}
}

// WithLogger sets the logger used for degraded-path warnings.
func WithLogger(l observe.Logger) Option {
	return func(m *Memo) {
		m.logger = l
	}
}

// WithObserver wraps every operation in the given observability middleware.
// A host that already observes the enclosing request passes mw.Nested().
func WithObserver(mw *observe.Middleware) Option {
	return func(m *Memo) {
		m.mw = mw
	}
}

// WithSingleflight coalesces concurrent misses on the same key into a
// single transform call. Off by default: without it racing misses each run
// the transform and the last store write wins. The shared fill is detached
// from any one caller's cancellation; each caller still stops waiting when
// its own ctx is done.
func WithSingleflight() Option {
	return func(m *Memo) {
		m.group = &singleflight.Group{}
	}
}

// New creates a Memo over store and transform.
func New(store Store, transform Transform, opts ...Option) (*Memo, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if transform == nil {
		return nil, ErrNilTransform
	}

	m := &Memo{
		store:     store,
		transform: transform,
		keyer:     NewDefaultKeyer(""),
		policy:    FailClosed,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.mw == nil {
		m.mw = observe.NewMiddleware(nil, nil, m.logger)
	}
	if m.logger == nil {
		m.logger = m.mw.Logger()
	}
	m.inner = m.mw.Nested()

	return m, nil
}

// Policy returns the configured failure policy.
func (m *Memo) Policy() FailurePolicy {
	return m.policy
}

// GetOrCompute returns the cached Result for (scope, text), computing and
// storing it on a miss.
func (m *Memo) GetOrCompute(ctx context.Context, scope, text string) (Result, error) {
	var res Result
	err := m.mw.Run(ctx, observe.OpMeta{Component: component, Op: "get_or_compute", Scope: scope},
		func(ctx context.Context, meta observe.OpMeta) error {
			var err error
			res, err = m.getOrCompute(ctx, meta, scope, text)
			return err
		})
	return res, err
}

// Render returns only the cached primary output for (scope, text).
func (m *Memo) Render(ctx context.Context, scope, text string) (string, error) {
	var out string
	err := m.mw.Run(ctx, observe.OpMeta{Component: component, Op: "render", Scope: scope},
		func(ctx context.Context, meta observe.OpMeta) error {
			res, err := m.getOrCompute(ctx, meta, scope, text)
			out = res.Output
			return err
		})
	return out, err
}

// Extract runs the transform without consulting or filling the store, for
// callers that need side-channel data computed from the current transform.
func (m *Memo) Extract(ctx context.Context, scope, text string) (Result, error) {
	var res Result
	err := m.mw.Run(ctx, observe.OpMeta{Component: component, Op: "extract", Scope: scope},
		func(ctx context.Context, meta observe.OpMeta) error {
			var err error
			res, err = m.compute(ctx, scope, text)
			return err
		})
	return res, err
}

// Invalidate deletes the stored entry for (scope, text), if any.
func (m *Memo) Invalidate(ctx context.Context, scope, text string) error {
	return m.mw.Run(ctx, observe.OpMeta{Component: component, Op: "invalidate", Scope: scope},
		func(ctx context.Context, meta observe.OpMeta) error {
			key, err := m.keyer.Key(scope, text)
			if err != nil {
				return err
			}
			if err := m.store.Delete(ctx, key); err != nil {
				return storeError("delete", key, err)
			}
			return nil
		})
}

func (m *Memo) getOrCompute(ctx context.Context, meta observe.OpMeta, scope, text string) (Result, error) {
	key, err := m.keyer.Key(scope, text)
	if err != nil {
		m.logger.With(meta).Warn(ctx, "key derivation failed, bypassing cache",
			observe.Field{Key: "error", Value: err.Error()})
		return m.computeUncached(ctx, meta, scope, text)
	}

	data, ok, err := m.store.Get(ctx, key)
	if err != nil {
		m.mw.RecordLookup(ctx, meta, observe.LookupStoreError)
		serr := storeError("get", key, err)
		if m.policy == FailClosed {
			return Result{}, serr
		}
		m.logger.With(meta).Warn(ctx, "store unavailable, computing without cache",
			observe.Field{Key: "error", Value: serr.Error()})
		return m.computeUncached(ctx, meta, scope, text)
	}

	if ok {
		var res Result
		if err := json.Unmarshal(data, &res); err == nil {
			m.mw.RecordLookup(ctx, meta, observe.LookupHit)
			return res, nil
		}
		m.logger.With(meta).Warn(ctx, "undecodable entry treated as miss",
			observe.Field{Key: "key", Value: key})
	}

	m.mw.RecordLookup(ctx, meta, observe.LookupMiss)

	if m.group == nil {
		f, err := m.fill(ctx, meta, key, scope, text)
		return f.res, err
	}

	ch := m.group.DoChan(key, func() (any, error) {
		return m.fill(context.WithoutCancel(ctx), meta, key, scope, text)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		f := r.Val.(filled)
		if !r.Shared || f.data == nil {
			return f.res, nil
		}
		// Coalesced callers each get their own Data map.
		var res Result
		if err := json.Unmarshal(f.data, &res); err != nil {
			return f.res, nil
		}
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// filled is the outcome of a fill: the result in stored form and the bytes
// written, nil when the result could not be encoded.
type filled struct {
	res  Result
	data []byte
}

// fill computes and stores the entry for key.
func (m *Memo) fill(ctx context.Context, meta observe.OpMeta, key, scope, text string) (filled, error) {
	res, err := m.compute(ctx, scope, text)
	if err != nil {
		return filled{}, err
	}

	data, stored, err := encode(res)
	if err != nil {
		m.logger.With(meta).Warn(ctx, "result not encodable, skipping store",
			observe.Field{Key: "error", Value: err.Error()})
		return filled{res: res}, nil
	}

	if err := m.store.Set(ctx, key, data); err != nil {
		m.mw.RecordLookup(ctx, meta, observe.LookupStoreError)
		serr := storeError("set", key, err)
		if m.policy == FailClosed {
			return filled{}, serr
		}
		m.logger.With(meta).Warn(ctx, "store write failed, returning uncached result",
			observe.Field{Key: "error", Value: serr.Error()})
	}

	return filled{res: stored, data: data}, nil
}

// computeUncached runs the transform and returns its result in stored form
// without touching the store.
func (m *Memo) computeUncached(ctx context.Context, meta observe.OpMeta, scope, text string) (Result, error) {
	res, err := m.compute(ctx, scope, text)
	if err != nil {
		return Result{}, err
	}
	if _, stored, err := encode(res); err == nil {
		return stored, nil
	}
	m.logger.With(meta).Debug(ctx, "result not encodable, returning transform output")
	return res, nil
}

func (m *Memo) compute(ctx context.Context, scope, text string) (Result, error) {
	var res Result
	err := m.inner.Run(ctx, observe.OpMeta{Component: component, Op: "transform", Scope: scope},
		func(ctx context.Context, _ observe.OpMeta) error {
			var err error
			res, err = m.transform.Transform(ctx, scope, text)
			if err != nil {
				return &TransformError{Scope: scope, Fingerprint: Fingerprint(text), Err: err}
			}
			return nil
		})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// encode returns the bytes stored for res and res as a later hit decodes it.
func encode(res Result) ([]byte, Result, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, Result{}, err
	}
	var stored Result
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, Result{}, err
	}
	return data, stored, nil
}

// storeError wraps err as a *StoreError unless it already is one.
func storeError(op, key string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return se
	}
	return &StoreError{Op: op, Key: key, Err: err}
}
