package retrieval

import (
	"context"
	"errors"
	"sort"
	"strings"

	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/repository/contract"
	"ai-shopping-assistant-be/internal/repository/specification"
	"ai-shopping-assistant-be/pkg/rag/outcome"
	"ai-shopping-assistant-be/pkg/similarity"
)

const logModule = "Retriever"

// RankDecay is the per-rank step of the last-resort score estimate.
const RankDecay = 0.1

const defaultPageSize = 10

type Embedder interface {
	Embed(ctx context.Context, text string) outcome.Result[[]float32]
}

// Match is one row returned by the similarity store. Score is nil when the
// store did not compute one.
type Match struct {
	Product *entity.Product
	Score   *float64
}

type Filter struct {
	Category     string
	PriceMin     *float64
	PriceMax     *float64
	InStockOnly  bool
	FeaturedOnly bool
	Tags         []string
	SortBy       string
	Limit        int
	Offset       int
}

// Catalog is the read side of the product store.
type Catalog interface {
	SearchSimilar(ctx context.Context, embedding []float32, threshold float64, count int) ([]Match, error)
	Filter(ctx context.Context, f Filter) ([]*entity.Product, int64, error)
}

type Query struct {
	Text         string
	Category     string
	PriceMin     *float64
	PriceMax     *float64
	InStockOnly  bool
	FeaturedOnly bool
	Tags         []string
	SortBy       string
	Limit        int
	Offset       int
	Threshold    float64
	MaxResults   int
}

type Candidate struct {
	Product         *entity.Product
	SimilarityScore float64
}

type Path string

const (
	PathSemantic Path = "semantic"
	PathFilter   Path = "filter"
)

type SearchResult struct {
	Candidates []Candidate
	Total      int64
	HasMore    bool
	Path       Path
}

func emptyResult(path Path) SearchResult {
	return SearchResult{Candidates: []Candidate{}, Path: path}
}

type Retriever struct {
	catalog  Catalog
	embedder Embedder
	logger   logger.ILogger
}

func NewRetriever(catalog Catalog, embedder Embedder, log logger.ILogger) *Retriever {
	return &Retriever{
		catalog:  catalog,
		embedder: embedder,
		logger:   log,
	}
}

// Search runs the semantic path when the query has text and the filter path
// otherwise. Store failures yield an empty Unavailable result, never an error.
func (r *Retriever) Search(ctx context.Context, q Query) outcome.Result[SearchResult] {
	if strings.TrimSpace(q.Text) == "" {
		return r.filterSearch(ctx, q, "")
	}
	return r.semanticSearch(ctx, q)
}

func (r *Retriever) semanticSearch(ctx context.Context, q Query) outcome.Result[SearchResult] {
	embedded := r.embedder.Embed(ctx, q.Text)
	queryVec := embedded.Value

	limit := q.MaxResults
	if limit <= 0 {
		limit = defaultPageSize
	}

	matches, err := r.catalog.SearchSimilar(ctx, queryVec, q.Threshold, limit)
	if err != nil {
		if errors.Is(err, contract.ErrSemanticSearchUnavailable) {
			r.logger.Warn(logModule, "Semantic search unavailable, using attribute filters", map[string]interface{}{
				"error": err.Error(),
			})
			return r.filterSearch(ctx, q, "semantic search unavailable: "+err.Error())
		}
		r.logger.Error(logModule, "Similarity search failed", map[string]interface{}{
			"error": err.Error(),
			"query": q.Text,
		})
		return outcome.Unavailable(emptyResult(PathSemantic), "similarity search failed: "+err.Error())
	}

	candidates := ScoreMatches(queryVec, matches)
	candidates = dropBelow(candidates, q.Threshold)
	candidates = applyAttributeFilters(candidates, q)
	if q.SortBy != "" && q.SortBy != specification.SortRelevance {
		sortCandidates(candidates, q.SortBy)
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	r.logger.Debug(logModule, "Semantic search complete", map[string]interface{}{
		"query":      q.Text,
		"rows":       len(matches),
		"candidates": len(candidates),
		"threshold":  q.Threshold,
		"embedding":  string(embedded.Status),
	})

	result := SearchResult{
		Candidates: candidates,
		Total:      int64(len(candidates)),
		HasMore:    len(matches) >= limit,
		Path:       PathSemantic,
	}
	if !embedded.IsOk() {
		return outcome.Degraded(result, "query embedded locally: "+embedded.Reason)
	}
	return outcome.Ok(result)
}

func (r *Retriever) filterSearch(ctx context.Context, q Query, degradedReason string) outcome.Result[SearchResult] {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	products, total, err := r.catalog.Filter(ctx, Filter{
		Category:     q.Category,
		PriceMin:     q.PriceMin,
		PriceMax:     q.PriceMax,
		InStockOnly:  q.InStockOnly,
		FeaturedOnly: q.FeaturedOnly,
		Tags:         q.Tags,
		SortBy:       q.SortBy,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		r.logger.Error(logModule, "Attribute search failed", map[string]interface{}{
			"error": err.Error(),
		})
		return outcome.Unavailable(emptyResult(PathFilter), "attribute search failed: "+err.Error())
	}

	candidates := make([]Candidate, len(products))
	for i, p := range products {
		candidates[i] = Candidate{Product: p, SimilarityScore: rankEstimate(offset + i)}
	}

	result := SearchResult{
		Candidates: candidates,
		Total:      total,
		HasMore:    int64(offset+limit) < total,
		Path:       PathFilter,
	}
	if degradedReason != "" {
		return outcome.Degraded(result, degradedReason)
	}
	return outcome.Ok(result)
}

// ScoreMatches assigns every match a score in [0,1]: the store score when
// present, else cosine against the query when the product carries a vector,
// else a rank-based estimate. Order is by score descending, stable on store
// order.
func ScoreMatches(query []float32, matches []Match) []Candidate {
	candidates := make([]Candidate, 0, len(matches))
	for rank, m := range matches {
		if m.Product == nil {
			continue
		}
		var score float64
		switch {
		case m.Score != nil:
			score = *m.Score
		case len(m.Product.Embedding) > 0:
			score = similarity.Cosine(query, m.Product.Embedding)
		default:
			score = rankEstimate(rank)
		}
		candidates = append(candidates, Candidate{
			Product:         m.Product,
			SimilarityScore: similarity.Clamp01(score),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].SimilarityScore > candidates[j].SimilarityScore
	})
	return candidates
}

func rankEstimate(rank int) float64 {
	score := 1 - float64(rank)*RankDecay
	if score < 0 {
		return 0
	}
	return score
}

func dropBelow(candidates []Candidate, threshold float64) []Candidate {
	kept := candidates[:0]
	for _, c := range candidates {
		if c.SimilarityScore >= threshold {
			kept = append(kept, c)
		}
	}
	return kept
}

func applyAttributeFilters(candidates []Candidate, q Query) []Candidate {
	if q.Category == "" && q.PriceMin == nil && q.PriceMax == nil &&
		!q.InStockOnly && !q.FeaturedOnly && len(q.Tags) == 0 {
		return candidates
	}
	kept := candidates[:0]
	for _, c := range candidates {
		p := c.Product
		if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
			continue
		}
		if q.PriceMin != nil && p.Price < *q.PriceMin {
			continue
		}
		if q.PriceMax != nil && p.Price > *q.PriceMax {
			continue
		}
		if (q.InStockOnly && !p.InStock) || (q.FeaturedOnly && !p.Featured) {
			continue
		}
		if len(q.Tags) > 0 && !sharesTag(p.Tags, q.Tags) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func sharesTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

func sortCandidates(candidates []Candidate, sortBy string) {
	var less func(a, b *entity.Product) bool
	switch sortBy {
	case specification.SortPriceLowToHigh:
		less = func(a, b *entity.Product) bool { return a.Price < b.Price }
	case specification.SortPriceHighToLow:
		less = func(a, b *entity.Product) bool { return a.Price > b.Price }
	case specification.SortPopular:
		less = func(a, b *entity.Product) bool { return a.Popularity > b.Popularity }
	case specification.SortRating:
		less = func(a, b *entity.Product) bool { return a.Rating > b.Rating }
	case specification.SortNewest:
		less = func(a, b *entity.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return less(candidates[i].Product, candidates[j].Product)
	})
}
