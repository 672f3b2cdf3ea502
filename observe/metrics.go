package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LookupOutcome classifies a memo cache lookup.
type LookupOutcome int

const (
	LookupHit LookupOutcome = iota
	LookupMiss
	LookupStoreError
)

func (o LookupOutcome) String() string {
	switch o {
	case LookupHit:
		return "hit"
	case LookupMiss:
		return "miss"
	case LookupStoreError:
		return "store_error"
	default:
		return "unknown"
	}
}

// Metrics records operation and cache metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOp records an operation with duration and error status.
	RecordOp(ctx context.Context, meta OpMeta, duration time.Duration, err error)

	// RecordLookup records the outcome of a cache lookup.
	RecordLookup(ctx context.Context, meta OpMeta, outcome LookupOutcome)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	hits         metric.Int64Counter
	misses       metric.Int64Counter
	storeErrors  metric.Int64Counter
}

// NewMetrics creates the textops instruments on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"textops.op.total",
		metric.WithDescription("Total number of textops operations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"textops.op.errors",
		metric.WithDescription("Total number of failed textops operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"textops.op.duration_ms",
		metric.WithDescription("Operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	hits, err := meter.Int64Counter(
		"textops.memo.hits",
		metric.WithDescription("Memo lookups served from the store"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"textops.memo.misses",
		metric.WithDescription("Memo lookups that invoked the transform"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	storeErrors, err := meter.Int64Counter(
		"textops.memo.store_errors",
		metric.WithDescription("Memo lookups or writes that failed at the store"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		hits:         hits,
		misses:       misses,
		storeErrors:  storeErrors,
	}, nil
}

func attrsFor(meta OpMeta) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("component", meta.Component),
		attribute.String("op", meta.Op),
	)
}

func (m *metricsImpl) RecordOp(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	opt := attrsFor(meta)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}

func (m *metricsImpl) RecordLookup(ctx context.Context, meta OpMeta, outcome LookupOutcome) {
	opt := attrsFor(meta)

	switch outcome {
	case LookupHit:
		m.hits.Add(ctx, 1, opt)
	case LookupMiss:
		m.misses.Add(ctx, 1, opt)
	case LookupStoreError:
		m.storeErrors.Add(ctx, 1, opt)
	}
}

type noopMetrics struct{}

// NewNoopMetrics returns a Metrics that records nothing.
func NewNoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordOp(context.Context, OpMeta, time.Duration, error) {}
func (noopMetrics) RecordLookup(context.Context, OpMeta, LookupOutcome)    {}
