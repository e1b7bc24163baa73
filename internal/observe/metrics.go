// Package observe provides application-wide observability primitives for
// Voxkey: OpenTelemetry metrics and the Prometheus exporter bridge.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. Tests should use [NewMetrics]
// with a custom [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Voxkey metrics.
const meterName = "github.com/voxkey/voxkey"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// SuggestionDuration tracks end-to-end suggestion computation latency.
	// Use with attribute.String("trigger", "after_send"|"while_typing").
	SuggestionDuration metric.Float64Histogram

	// SpeakDuration tracks speech synthesis latency.
	SpeakDuration metric.Float64Histogram

	// ProviderRequests counts remote provider calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("op", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts remote provider failures. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("op", ...)
	ProviderErrors metric.Int64Counter

	// SuggestionsPublished counts published suggestion sets. Use with
	// attribute.String("trigger", ...) and attribute.String("source",
	// "remote"|"local").
	SuggestionsPublished metric.Int64Counter

	// StaleResultsDropped counts async suggestion results discarded because a
	// newer trigger published first.
	StaleResultsDropped metric.Int64Counter

	// LedgerEvents reports the current usage-ledger length.
	LedgerEvents metric.Int64Gauge
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// interactive suggestion latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.SuggestionDuration, err = m.Float64Histogram("voxkey.suggestion.duration",
		metric.WithDescription("Latency of suggestion computation per trigger."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SpeakDuration, err = m.Float64Histogram("voxkey.speak.duration",
		metric.WithDescription("Latency of speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("voxkey.provider.requests",
		metric.WithDescription("Remote provider API calls."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("voxkey.provider.errors",
		metric.WithDescription("Remote provider failures."),
	); err != nil {
		return nil, err
	}
	if met.SuggestionsPublished, err = m.Int64Counter("voxkey.suggestions.published",
		metric.WithDescription("Suggestion sets published to the presentation layer."),
	); err != nil {
		return nil, err
	}
	if met.StaleResultsDropped, err = m.Int64Counter("voxkey.suggestions.stale_dropped",
		metric.WithDescription("Async suggestion results discarded because a newer trigger won."),
	); err != nil {
		return nil, err
	}
	if met.LedgerEvents, err = m.Int64Gauge("voxkey.ledger.events",
		metric.WithDescription("Current usage ledger length."),
	); err != nil {
		return nil, err
	}

	return met, nil
}
