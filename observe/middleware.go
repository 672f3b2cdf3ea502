package observe

import (
	"context"
	"time"
)

// ExecuteFunc is the signature Middleware wraps. Results travel through
// the closure; only the error is observed.
type ExecuteFunc func(ctx context.Context, meta OpMeta) error

// Middleware wraps operations with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: the span context is passed to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
	nested  bool
}

// NewMiddleware creates a new Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewNoopTracer()
	}
	if metrics == nil {
		metrics = NewNoopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps an ExecuteFunc with tracing, metrics and logging.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, meta OpMeta) error {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		err := fn(ctx, meta)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordOp(ctx, meta, duration, err)

		opLogger := m.logger.With(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration) / float64(time.Millisecond)},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			if m.nested {
				opLogger.Debug(ctx, "operation failed", fields...)
			} else {
				opLogger.Error(ctx, "operation failed", fields...)
			}
		} else {
			opLogger.Debug(ctx, "operation completed", fields...)
		}

		return err
	}
}

// Nested returns a copy of m for operations that run inside another observed
// operation. Spans and metrics are unchanged; failures are logged at debug so
// the outermost operation owns the error line.
func (m *Middleware) Nested() *Middleware {
	n := *m
	n.nested = true
	return &n
}

// Run is shorthand for m.Wrap(fn)(ctx, meta).
func (m *Middleware) Run(ctx context.Context, meta OpMeta, fn ExecuteFunc) error {
	return m.Wrap(fn)(ctx, meta)
}

// RecordLookup forwards a cache lookup outcome to the metrics sink.
func (m *Middleware) RecordLookup(ctx context.Context, meta OpMeta, outcome LookupOutcome) {
	m.metrics.RecordLookup(ctx, meta, outcome)
}

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
