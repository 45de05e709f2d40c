package retrieval

import (
	"context"

	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/repository/specification"
	"ai-shopping-assistant-be/internal/repository/unitofwork"
)

// RepositoryCatalog serves Catalog from the product repository.
type RepositoryCatalog struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewRepositoryCatalog(uowFactory unitofwork.RepositoryFactory) *RepositoryCatalog {
	return &RepositoryCatalog{uowFactory: uowFactory}
}

func (c *RepositoryCatalog) SearchSimilar(ctx context.Context, embedding []float32, threshold float64, count int) ([]Match, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.ProductRepository().SearchSimilar(ctx, embedding, threshold, count)
	if err != nil {
		return nil, err
	}
	matches := make([]Match, len(rows))
	for i, row := range rows {
		score := row.Similarity
		matches[i] = Match{Product: row.Product, Score: &score}
	}
	return matches, nil
}

func (c *RepositoryCatalog) Filter(ctx context.Context, f Filter) ([]*entity.Product, int64, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ProductRepository()

	var where []specification.Specification
	if f.Category != "" {
		where = append(where, specification.ByCategory{Category: f.Category})
	}
	if f.PriceMin != nil || f.PriceMax != nil {
		where = append(where, specification.PriceBetween{Min: f.PriceMin, Max: f.PriceMax})
	}
	if f.InStockOnly {
		where = append(where, specification.InStockOnly{})
	}
	if f.FeaturedOnly {
		where = append(where, specification.FeaturedOnly{})
	}
	if len(f.Tags) > 0 {
		where = append(where, specification.HasAnyTag{Tags: f.Tags})
	}

	total, err := repo.Count(ctx, where...)
	if err != nil {
		return nil, 0, err
	}

	page := append(append([]specification.Specification{}, where...),
		specification.ProductSort{SortBy: f.SortBy},
		specification.Pagination{Limit: f.Limit, Offset: f.Offset},
	)
	products, err := repo.FindAll(ctx, page...)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}
