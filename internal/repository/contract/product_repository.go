package contract

import (
	"context"
	"errors"

	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ErrSemanticSearchUnavailable is returned when the store has no vector
// support (extension missing or the similarity operator is undefined).
var ErrSemanticSearchUnavailable = errors.New("semantic search unavailable")

// ScoredProduct wraps Product with its cosine similarity to the query.
type ScoredProduct struct {
	Product    *entity.Product
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
	// SearchSimilar returns products whose similarity is >= threshold, best first
	SearchSimilar(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*ScoredProduct, error)
	CategoryCounts(ctx context.Context) ([]*entity.CategoryCount, error)
}
