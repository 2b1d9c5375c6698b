package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics records cache activity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic; recording is best-effort.
type Metrics interface {
	// RecordGet records a lookup and whether it hit either tier.
	RecordGet(ctx context.Context, hit bool)

	// RecordSet records an insert or overwrite.
	RecordSet(ctx context.Context)

	// RecordRemove records an explicit removal.
	RecordRemove(ctx context.Context)

	// RecordDemotion records bytes moved from memory to disk.
	RecordDemotion(ctx context.Context, bytes uint64, strategy string)

	// RecordEviction records bytes reclaimed by full eviction.
	RecordEviction(ctx context.Context, bytes uint64, strategy string)

	// RecordRAMUsed records the current memory-tier usage.
	RecordRAMUsed(ctx context.Context, bytes uint64)
}

// metricsImpl is the concrete OpenTelemetry implementation of Metrics.
type metricsImpl struct {
	hits         metric.Int64Counter
	misses       metric.Int64Counter
	sets         metric.Int64Counter
	removes      metric.Int64Counter
	demotedBytes metric.Int64Counter
	evictedBytes metric.Int64Counter
	ramUsedGauge metric.Int64Gauge
}

// NewMetrics creates a Metrics instance recording through the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	hits, err := meter.Int64Counter(
		"cache.get.hits",
		metric.WithDescription("Number of lookups served from either tier"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"cache.get.misses",
		metric.WithDescription("Number of lookups that found no entry"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	sets, err := meter.Int64Counter(
		"cache.set.total",
		metric.WithDescription("Number of inserts and overwrites"),
		metric.WithUnit("{op}"),
	)
	if err != nil {
		return nil, err
	}

	removes, err := meter.Int64Counter(
		"cache.remove.total",
		metric.WithDescription("Number of explicit removals"),
		metric.WithUnit("{op}"),
	)
	if err != nil {
		return nil, err
	}

	demotedBytes, err := meter.Int64Counter(
		"cache.demoted.bytes",
		metric.WithDescription("Bytes moved from the memory tier to disk"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	evictedBytes, err := meter.Int64Counter(
		"cache.evicted.bytes",
		metric.WithDescription("Disk bytes reclaimed by full eviction"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	ramUsedGauge, err := meter.Int64Gauge(
		"cache.ram.used",
		metric.WithDescription("Current memory-tier usage"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		hits:         hits,
		misses:       misses,
		sets:         sets,
		removes:      removes,
		demotedBytes: demotedBytes,
		evictedBytes: evictedBytes,
		ramUsedGauge: ramUsedGauge,
	}, nil
}

// NewNopMetrics returns a Metrics that records nothing.
func NewNopMetrics() Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("tiercache"))
	return m
}

func (m *metricsImpl) RecordGet(ctx context.Context, hit bool) {
	if hit {
		m.hits.Add(ctx, 1)
		return
	}
	m.misses.Add(ctx, 1)
}

func (m *metricsImpl) RecordSet(ctx context.Context) {
	m.sets.Add(ctx, 1)
}

func (m *metricsImpl) RecordRemove(ctx context.Context) {
	m.removes.Add(ctx, 1)
}

func (m *metricsImpl) RecordDemotion(ctx context.Context, bytes uint64, strategy string) {
	m.demotedBytes.Add(ctx, int64(bytes), metric.WithAttributes(
		attribute.String("cache.strategy", strategy),
	))
}

func (m *metricsImpl) RecordEviction(ctx context.Context, bytes uint64, strategy string) {
	m.evictedBytes.Add(ctx, int64(bytes), metric.WithAttributes(
		attribute.String("cache.strategy", strategy),
	))
}

func (m *metricsImpl) RecordRAMUsed(ctx context.Context, bytes uint64) {
	m.ramUsedGauge.Record(ctx, int64(bytes))
}

// Ensure metricsImpl implements Metrics
var _ Metrics = (*metricsImpl)(nil)
