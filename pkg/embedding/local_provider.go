package embedding

import (
	"context"
	"strings"

	"ai-shopping-assistant-be/pkg/similarity"
)

// LocalProvider is the deterministic character-histogram embedding used
// when the remote provider is unreachable. Same text, same vector.
type LocalProvider struct {
	dimensions int
}

var _ EmbeddingProvider = (*LocalProvider)(nil)

func NewLocalProvider(dimensions int) *LocalProvider {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &LocalProvider{dimensions: dimensions}
}

func (p *LocalProvider) Generate(_ context.Context, text string) ([]float32, error) {
	return p.Embed(text), nil
}

// Embed lowercases text, splits on whitespace and adds 1 to
// vector[codepoint mod D] for every character of every token. The result
// is L2-normalized unless it is the zero vector.
func (p *LocalProvider) Embed(text string) []float32 {
	vec := make([]float32, p.dimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		for _, r := range token {
			vec[int(r)%p.dimensions]++
		}
	}
	return similarity.Normalize(vec)
}

func (p *LocalProvider) Dimensions() int {
	return p.dimensions
}

func (p *LocalProvider) Name() string {
	return "local"
}
