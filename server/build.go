package server

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/textops/auth"
	"github.com/jonwraymond/textops/config"
	"github.com/jonwraymond/textops/health"
	"github.com/jonwraymond/textops/memo"
	"github.com/jonwraymond/textops/observe"
	"github.com/jonwraymond/textops/resilience"
)

// Backend is a configured memo store and the handles around it.
type Backend struct {
	Store   *memo.GuardedStore
	Breaker *resilience.Breaker
	close   func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// NewBackend builds the store named by cfg.Backend and guards it with the
// configured breaker, retry and timeout.
func NewBackend(ctx context.Context, cfg config.StoreConfig, logger observe.Logger) (*Backend, error) {
	if logger == nil {
		logger = observe.NopLogger()
	}

	var (
		store   memo.Store
		closeFn func() error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		store = memo.NewMemoryStore(cfg.MaxEntries)
	case config.BackendNone:
		store = memo.NopStore{}
	case config.BackendRedis, config.BackendLayered:
		rs, err := memo.NewRedisStore(ctx, memo.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return nil, err
		}
		store, closeFn = rs, rs.Close
		if cfg.Backend == config.BackendLayered {
			store = memo.NewLayeredStore(memo.NewMemoryStore(cfg.MaxEntries), rs)
		}
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidBackend, cfg.Backend)
	}

	var opts []resilience.ExecutorOption
	var breaker *resilience.Breaker
	if cfg.Breaker.Enabled {
		breaker = resilience.NewBreaker(resilience.BreakerConfig{
			Threshold: cfg.Breaker.Threshold,
			Cooldown:  cfg.Breaker.Cooldown,
			OnStateChange: func(from, to resilience.State) {
				logger.Warn(context.Background(), "store circuit changed",
					observe.Field{Key: "from", Value: from.String()},
					observe.Field{Key: "to", Value: to.String()},
				)
			},
		})
		opts = append(opts, resilience.WithBreaker(breaker))
	}
	if cfg.Retry.Attempts > 1 {
		opts = append(opts, resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			Attempts:  cfg.Retry.Attempts,
			BaseDelay: cfg.Retry.BaseDelay,
			MaxDelay:  cfg.Retry.MaxDelay,
		})))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, resilience.WithTimeout(cfg.Timeout))
	}

	return &Backend{
		Store:   memo.NewGuardedStore(store, resilience.NewExecutor(opts...)),
		Breaker: breaker,
		close:   closeFn,
	}, nil
}

// Build assembles a Server from cfg. transform nil means PlainText. The
// returned server owns the store connection; call Close when done.
func Build(ctx context.Context, cfg config.Config, transform memo.Transform, obs observe.Observer) (*Server, error) {
	if transform == nil {
		transform = PlainText
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, fmt.Errorf("server: metrics: %w", err)
	}
	logger := obs.Logger()

	backend, err := NewBackend(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	memoOpts := []memo.Option{
		memo.WithKeyer(memo.NewDefaultKeyer(cfg.Store.Namespace)),
		memo.WithFailurePolicy(cfg.Store.Policy()),
		memo.WithObserver(mw.Nested()),
		memo.WithLogger(logger),
	}
	if cfg.Store.Singleflight {
		memoOpts = append(memoOpts, memo.WithSingleflight())
	}
	m, err := memo.New(backend.Store, transform, memoOpts...)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	agg := health.NewAggregator()
	if cfg.Store.Backend != config.BackendNone {
		agg.Register("store", health.NewStoreChecker("store", backend.Store, cfg.Store.Timeout).WithPolicy(cfg.Store.Policy()))
	}
	if backend.Breaker != nil {
		agg.Register("breaker", health.NewBreakerChecker("breaker", backend.Breaker))
	}

	opts := []Option{
		WithDiffOptions(cfg.Diff.Options()),
		WithObserver(mw),
		WithHealth(agg),
		WithMaxBodyBytes(cfg.Listen.MaxBodyBytes),
		WithConcurrencyLimit(cfg.Listen.MaxConcurrent, cfg.Listen.MaxWait),
		WithTimeouts(cfg.Listen.ReadTimeout, cfg.Listen.WriteTimeout, cfg.Listen.ShutdownTimeout),
		WithCloser(backend.Close),
	}
	if cfg.Observe.Metrics.Enabled && cfg.Observe.Metrics.Exporter == "prometheus" {
		opts = append(opts, WithMetricsHandler(promhttp.Handler()))
	}
	if cfg.Auth.Enabled {
		a, err := auth.NewJWTAuthenticator(auth.JWTConfig{
			Secret:   []byte(cfg.Auth.Secret),
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
		})
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
		opts = append(opts, WithAuthenticator(a))
	}

	return New(m, opts...)
}
