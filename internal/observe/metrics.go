// Package observe provides application-wide observability primitives for the
// order-intent engine: OpenTelemetry metrics and the provider setup that
// bridges them to a Prometheus /metrics endpoint.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) is provided
// for convenience; tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all engine metrics.
const meterName = "github.com/dawoncafe/orderintent"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// ClassifyDuration tracks intent classification latency. Use with
	// attribute.String("source", ...).
	ClassifyDuration metric.Float64Histogram

	// Transcripts counts processed speech results. Use with
	// attribute.Bool("final", ...).
	Transcripts metric.Int64Counter

	// EchoDrops counts transcripts discarded as playback echo.
	EchoDrops metric.Int64Counter

	// IntentFallbacks counts classifications answered by a fallback source
	// after the primary failed or was unsure.
	IntentFallbacks metric.Int64Counter

	// ItemsAdded counts order units added across all sessions.
	ItemsAdded metric.Int64Counter

	// OrdersConfirmed counts confirmed orders.
	OrdersConfirmed metric.Int64Counter

	// PendingClarifications tracks open temperature questions.
	PendingClarifications metric.Int64UpDownCounter

	// ActiveSessions tracks the number of live kiosk sessions.
	ActiveSessions metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// cloud classification round trips.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ClassifyDuration, err = m.Float64Histogram("orderintent.classify.duration",
		metric.WithDescription("Latency of intent classification by source."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.Transcripts, err = m.Int64Counter("orderintent.transcripts",
		metric.WithDescription("Total processed speech results by finality."),
	); err != nil {
		return nil, err
	}
	if met.EchoDrops, err = m.Int64Counter("orderintent.echo.drops",
		metric.WithDescription("Total transcripts discarded as playback echo."),
	); err != nil {
		return nil, err
	}
	if met.IntentFallbacks, err = m.Int64Counter("orderintent.intent.fallbacks",
		metric.WithDescription("Total classifications answered by a fallback source."),
	); err != nil {
		return nil, err
	}
	if met.ItemsAdded, err = m.Int64Counter("orderintent.items.added",
		metric.WithDescription("Total order units added."),
	); err != nil {
		return nil, err
	}
	if met.OrdersConfirmed, err = m.Int64Counter("orderintent.orders.confirmed",
		metric.WithDescription("Total confirmed orders."),
	); err != nil {
		return nil, err
	}

	if met.PendingClarifications, err = m.Int64UpDownCounter("orderintent.pending_clarifications",
		metric.WithDescription("Open temperature clarification questions."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("orderintent.active_sessions",
		metric.WithDescription("Number of live kiosk sessions."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordTranscript records one processed speech result.
func (m *Metrics) RecordTranscript(ctx context.Context, final bool) {
	m.Transcripts.Add(ctx, 1,
		metric.WithAttributes(attribute.Bool("final", final)),
	)
}

// RecordClassify records one classification round trip.
func (m *Metrics) RecordClassify(ctx context.Context, source string, elapsed time.Duration) {
	m.ClassifyDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("source", source)),
	)
}
