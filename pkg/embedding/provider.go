package embedding

import (
	"context"
	"errors"
)

// EmbeddingProvider defines the interface for generating text embeddings.
// Implementations return vectors of exactly Dimensions() components.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Name() string
}

var (
	ErrEmptyEmbedding    = errors.New("embedding provider returned no vector")
	ErrDimensionMismatch = errors.New("embedding provider returned a vector of unexpected length")
)

func float64ToFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
