package resilience

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/voxkey/voxkey/internal/observe"
	"github.com/voxkey/voxkey/pkg/provider/suggest"
)

// Compile-time interface check.
var _ suggest.Provider = (*Suggester)(nil)

// Suggester wraps a suggest.Provider with a shared [CircuitBreaker]. Both
// remote operations feed the same breaker: the failure mode being guarded
// against is the network, not an individual endpoint. When the breaker is
// open, calls return [ErrCircuitOpen] immediately and the engine degrades to
// its local path without waiting out a network timeout.
type Suggester struct {
	inner   suggest.Provider
	breaker *CircuitBreaker
	name    string
	metrics *observe.Metrics
}

// SuggesterOption is a functional option for Suggester.
type SuggesterOption func(*Suggester)

// WithMetrics enables per-call request and error counters.
func WithMetrics(m *observe.Metrics) SuggesterOption {
	return func(s *Suggester) { s.metrics = m }
}

// NewSuggester wraps inner with a breaker configured by cfg.
func NewSuggester(inner suggest.Provider, cfg CircuitBreakerConfig, opts ...SuggesterOption) *Suggester {
	if cfg.Name == "" {
		cfg.Name = "suggester"
	}
	s := &Suggester{
		inner:   inner,
		breaker: NewCircuitBreaker(cfg),
		name:    cfg.Name,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Complete implements suggest.Provider.
func (s *Suggester) Complete(ctx context.Context, partialText string) (string, error) {
	var result string
	err := s.breaker.Execute(func() error {
		var innerErr error
		result, innerErr = s.inner.Complete(ctx, partialText)
		return innerErr
	})
	s.count(ctx, "complete", err)
	if err != nil {
		return "", err
	}
	return result, nil
}

// SuggestResponses implements suggest.Provider.
func (s *Suggester) SuggestResponses(ctx context.Context, spoken string) ([]string, error) {
	var result []string
	err := s.breaker.Execute(func() error {
		var innerErr error
		result, innerErr = s.inner.SuggestResponses(ctx, spoken)
		return innerErr
	})
	s.count(ctx, "suggest_responses", err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// count records one provider request and, on failure, one provider error.
func (s *Suggester) count(ctx context.Context, operation string, err error) {
	if s.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", s.name),
		attribute.String("operation", operation),
	)
	s.metrics.ProviderRequests.Add(ctx, 1, attrs)
	if err != nil {
		s.metrics.ProviderErrors.Add(ctx, 1, attrs)
	}
}

// Breaker exposes the underlying breaker for health checks and tests.
func (s *Suggester) Breaker() *CircuitBreaker {
	return s.breaker
}
