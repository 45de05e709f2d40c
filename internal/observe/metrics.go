// Package observe holds the OpenTelemetry metric instruments of the shopping
// assistant and the Prometheus bridge that exposes them on /metrics.
//
// Every Record method is safe on a nil *Metrics so components can be built
// without instrumentation in tests.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "ai-shopping-assistant-be"

type Metrics struct {
	// EmbeddingFallbacks counts queries embedded by the local deterministic
	// provider. Attribute: provider (the primary that failed).
	EmbeddingFallbacks metric.Int64Counter

	// StepDegradations counts pipeline steps that did not complete on their
	// primary path. Attributes: step, status.
	StepDegradations metric.Int64Counter

	// ChatTurns counts handled chat messages. Attribute: state (final state).
	ChatTurns metric.Int64Counter

	// ProviderDuration tracks external provider latency. Attributes: provider, kind.
	ProviderDuration metric.Float64Histogram

	// ProviderErrors counts failed provider calls. Attributes: provider, kind.
	ProviderErrors metric.Int64Counter

	// TurnDuration tracks end-to-end chat turn latency.
	TurnDuration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.EmbeddingFallbacks, err = m.Int64Counter("assistant.embedding.fallbacks",
		metric.WithDescription("Queries embedded with the local deterministic fallback."),
	); err != nil {
		return nil, err
	}
	if met.StepDegradations, err = m.Int64Counter("assistant.pipeline.degradations",
		metric.WithDescription("Pipeline steps that fell back or returned empty values."),
	); err != nil {
		return nil, err
	}
	if met.ChatTurns, err = m.Int64Counter("assistant.chat.turns",
		metric.WithDescription("Chat messages handled, by final state."),
	); err != nil {
		return nil, err
	}
	if met.ProviderDuration, err = m.Float64Histogram("assistant.provider.duration",
		metric.WithDescription("Latency of embedding and language model calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("assistant.provider.errors",
		metric.WithDescription("Failed embedding and language model calls."),
	); err != nil {
		return nil, err
	}
	if met.TurnDuration, err = m.Float64Histogram("assistant.chat.turn.duration",
		metric.WithDescription("End-to-end latency of one chat turn."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the process-wide instance built on the global
// meter provider. Call InitMetrics first to have it exported.
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

func (m *Metrics) RecordEmbeddingFallback(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.EmbeddingFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

func (m *Metrics) RecordDegradation(ctx context.Context, step, status string) {
	if m == nil {
		return
	}
	m.StepDegradations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordTurn(ctx context.Context, state string, seconds float64) {
	if m == nil {
		return
	}
	m.ChatTurns.Add(ctx, 1, metric.WithAttributes(attribute.String("state", state)))
	m.TurnDuration.Record(ctx, seconds)
}

func (m *Metrics) RecordProviderCall(ctx context.Context, provider, kind string, seconds float64, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("kind", kind),
	)
	m.ProviderDuration.Record(ctx, seconds, attrs)
	if err != nil {
		m.ProviderErrors.Add(ctx, 1, attrs)
	}
}
