package embedding

import (
	"context"
	"fmt"
	"time"

	"ai-shopping-assistant-be/internal/observe"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/pkg/rag/outcome"
)

// FallbackProvider calls the primary provider and substitutes the local
// deterministic embedding on any failure. It never returns an error.
type FallbackProvider struct {
	primary EmbeddingProvider
	local   *LocalProvider
	logger  logger.ILogger
	metrics *observe.Metrics
}

var _ EmbeddingProvider = (*FallbackProvider)(nil)

// NewFallbackProvider wraps primary. A nil primary means every call uses
// the local embedding.
func NewFallbackProvider(primary EmbeddingProvider, dimensions int, log logger.ILogger, metrics *observe.Metrics) *FallbackProvider {
	if primary != nil && dimensions <= 0 {
		dimensions = primary.Dimensions()
	}
	return &FallbackProvider{
		primary: primary,
		local:   NewLocalProvider(dimensions),
		logger:  log,
		metrics: metrics,
	}
}

// Embed returns the primary vector as Ok, or the local vector as Degraded.
func (p *FallbackProvider) Embed(ctx context.Context, text string) outcome.Result[[]float32] {
	if p.primary == nil {
		return p.fallback(ctx, text, "none", "no primary embedding provider configured")
	}

	start := time.Now()
	vec, err := p.primary.Generate(ctx, text)
	if err == nil {
		err = p.validate(vec)
	}
	p.metrics.RecordProviderCall(ctx, p.primary.Name(), "embed", time.Since(start).Seconds(), err)

	if err != nil {
		return p.fallback(ctx, text, p.primary.Name(), err.Error())
	}
	return outcome.Ok(vec)
}

func (p *FallbackProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	return p.Embed(ctx, text).Value, nil
}

func (p *FallbackProvider) Dimensions() int {
	return p.local.Dimensions()
}

func (p *FallbackProvider) Name() string {
	if p.primary == nil {
		return p.local.Name()
	}
	return p.primary.Name()
}

func (p *FallbackProvider) validate(vec []float32) error {
	if len(vec) == 0 {
		return ErrEmptyEmbedding
	}
	if len(vec) != p.local.Dimensions() {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), p.local.Dimensions())
	}
	return nil
}

func (p *FallbackProvider) fallback(ctx context.Context, text, provider, reason string) outcome.Result[[]float32] {
	p.logger.Warn("Embedding", "Primary embedding failed, using local fallback", map[string]interface{}{
		"provider":         provider,
		"reason":           reason,
		"embedding_source": "local_fallback",
	})
	p.metrics.RecordEmbeddingFallback(ctx, provider)
	return outcome.Degraded(p.local.Embed(text), reason)
}
