package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"ai-shopping-assistant-be/internal/dto"
	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/repository/contract"
	"ai-shopping-assistant-be/internal/repository/specification"
	"ai-shopping-assistant-be/internal/repository/unitofwork"
	"ai-shopping-assistant-be/pkg/rag/retrieval"

	"github.com/google/uuid"
)

var ErrProductNotFound = fmt.Errorf("product %w", contract.ErrRecordNotFound)

const (
	defaultSearchLimit         = 10
	defaultFeaturedLimit       = 10
	defaultRecommendationLimit = 5
	// Preference ranking reads this many candidates per result slot.
	preferencePoolFactor = 4
)

type IProductService interface {
	Search(ctx context.Context, req *dto.ProductSearchRequest) (*dto.ProductSearchResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	Add(ctx context.Context, req *dto.AddProductRequest) (*dto.ProductResponse, error)
	Update(ctx context.Context, req *dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Featured(ctx context.Context, limit int) ([]*dto.ProductResponse, error)
	Categories(ctx context.Context) ([]*dto.CategoryResponse, error)
	Recommendations(ctx context.Context, req *dto.RecommendationRequest) ([]*dto.ProductResponse, error)
}

type ProductServiceConfig struct {
	SearchThreshold         float64
	RecommendationThreshold float64
}

type productService struct {
	uowFactory       unitofwork.RepositoryFactory
	retriever        *retrieval.Retriever
	publisherService IPublisherService
	logger           logger.ILogger
	cfg              ProductServiceConfig
}

func NewProductService(
	uowFactory unitofwork.RepositoryFactory,
	retriever *retrieval.Retriever,
	publisherService IPublisherService,
	log logger.ILogger,
	cfg ProductServiceConfig,
) IProductService {
	return &productService{
		uowFactory:       uowFactory,
		retriever:        retriever,
		publisherService: publisherService,
		logger:           log,
		cfg:              cfg,
	}
}

func (s *productService) Search(ctx context.Context, req *dto.ProductSearchRequest) (*dto.ProductSearchResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = specification.SortRelevance
	}

	q := retrieval.Query{
		Text:       strings.TrimSpace(req.Query),
		Category:   req.Category,
		SortBy:     sortBy,
		Limit:      limit,
		Offset:     req.Offset,
		Threshold:  s.cfg.SearchThreshold,
		MaxResults: limit,
	}
	if req.PriceRange != nil {
		q.PriceMin, q.PriceMax = req.PriceRange.Min, req.PriceRange.Max
	}
	if f := req.Filters; f != nil {
		q.InStockOnly = f.InStock != nil && *f.InStock
		q.FeaturedOnly = f.Featured != nil && *f.Featured
		q.Tags = f.Tags
	}

	result := s.retriever.Search(ctx, q)
	if !result.IsOk() {
		s.logger.Warn("ProductService", "Product search degraded", map[string]interface{}{
			"status": string(result.Status),
			"reason": result.Reason,
		})
	}

	semantic := result.Value.Path == retrieval.PathSemantic
	products := make([]*dto.ProductResponse, 0, len(result.Value.Candidates))
	for _, c := range result.Value.Candidates {
		res := toProductResponse(c.Product)
		if semantic {
			score := c.SimilarityScore
			res.Similarity = &score
		}
		products = append(products, res)
	}

	return &dto.ProductSearchResponse{
		Products: products,
		Total:    result.Value.Total,
		HasMore:  result.Value.HasMore,
		Filters: dto.AppliedFilters{
			Query:      req.Query,
			Category:   req.Category,
			PriceRange: req.PriceRange,
			SortBy:     sortBy,
		},
	}, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	return toProductResponse(product), nil
}

func (s *productService) Add(ctx context.Context, req *dto.AddProductRequest) (*dto.ProductResponse, error) {
	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	product := entity.Product{
		Id:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageUrl:    req.ImageUrl,
		Tags:        req.Tags,
		InStock:     inStock,
		Featured:    req.Featured,
		Metadata:    req.Metadata,
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ProductRepository().Create(ctx, &product); err != nil {
		return nil, err
	}

	if err := s.publishEmbed(ctx, product.Id); err != nil {
		return nil, err
	}

	s.logger.Info("ProductService", "Product created", map[string]interface{}{
		"product_id": product.Id.String(),
		"category":   product.Category,
	})

	return toProductResponse(&product), nil
}

func (s *productService) Update(ctx context.Context, req *dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	reembed := false
	if req.Name != nil && *req.Name != product.Name {
		product.Name = *req.Name
		reembed = true
	}
	if req.Description != nil && *req.Description != product.Description {
		product.Description = *req.Description
		reembed = true
	}
	if req.Category != nil && *req.Category != product.Category {
		product.Category = *req.Category
		reembed = true
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.ImageUrl != nil {
		product.ImageUrl = *req.ImageUrl
	}
	if req.Tags != nil {
		product.Tags = req.Tags
	}
	if req.InStock != nil {
		product.InStock = *req.InStock
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}
	if req.Metadata != nil {
		product.Metadata = req.Metadata
	}

	if err := uow.ProductRepository().Update(ctx, product); err != nil {
		return nil, err
	}

	if reembed {
		if err := s.publishEmbed(ctx, product.Id); err != nil {
			return nil, err
		}
	}

	return toProductResponse(product), nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}

	return uow.ProductRepository().Delete(ctx, id)
}

func (s *productService) Featured(ctx context.Context, limit int) ([]*dto.ProductResponse, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	products, err := uow.ProductRepository().FindAll(ctx,
		specification.FeaturedOnly{},
		specification.ProductSort{SortBy: specification.SortPopular},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, err
	}

	return toProductResponses(products), nil
}

func (s *productService) Categories(ctx context.Context) ([]*dto.CategoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	counts, err := uow.ProductRepository().CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.CategoryResponse, 0, len(counts))
	for _, c := range counts {
		result = append(result, &dto.CategoryResponse{
			Id:           slugify(c.Name),
			Name:         c.Name,
			ProductCount: c.Count,
		})
	}
	return result, nil
}

// Recommendations resolves, in order: neighbours of ProductId, its category,
// the requested Category, the stored preferences of UserId, then the most
// popular products.
func (s *productService) Recommendations(ctx context.Context, req *dto.RecommendationRequest) ([]*dto.ProductResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ProductRepository()

	if req.ProductId != "" {
		id, err := uuid.Parse(req.ProductId)
		if err != nil {
			return nil, ErrProductNotFound
		}
		product, err := repo.FindOne(ctx, specification.ByID{ID: id})
		if err != nil {
			return nil, err
		}
		if product != nil {
			neighbours, err := s.neighbours(ctx, repo, product, limit)
			if err != nil {
				return nil, err
			}
			if len(neighbours) > 0 {
				return neighbours, nil
			}
			return s.byCategory(ctx, repo, product.Category, limit, specification.ExcludeID{ID: product.Id})
		}
	}

	if req.Category != "" {
		return s.byCategory(ctx, repo, req.Category, limit)
	}

	var picked []*entity.Product
	if req.UserId != "" {
		prefs, err := uow.UserRepository().FindPreferences(ctx, req.UserId)
		if err != nil {
			s.logger.Warn("ProductService", "Preferences unavailable, recommending popular products", map[string]interface{}{
				"user_id": req.UserId,
				"error":   err.Error(),
			})
		} else if prefs.HasSignal() {
			if picked, err = s.byPreferences(ctx, repo, prefs, limit); err != nil {
				return nil, err
			}
		}
	}
	if len(picked) == limit {
		return toProductResponses(picked), nil
	}

	popular, err := repo.FindAll(ctx,
		specification.ProductSort{SortBy: specification.SortPopular},
		specification.Pagination{Limit: limit + len(picked)},
	)
	if err != nil {
		return nil, err
	}
	return toProductResponses(topUp(picked, popular, limit)), nil
}

// byPreferences ranks popular products inside the preferred categories and
// price range, moving preferred brands to the front.
func (s *productService) byPreferences(ctx context.Context, repo contract.ProductRepository, prefs *entity.UserPreferences, limit int) ([]*entity.Product, error) {
	var specs []specification.Specification
	if len(prefs.Categories) > 0 {
		specs = append(specs, specification.ByCategories{Categories: prefs.Categories})
	}
	if prefs.PriceMin != nil || prefs.PriceMax != nil {
		specs = append(specs, specification.PriceBetween{Min: prefs.PriceMin, Max: prefs.PriceMax})
	}
	specs = append(specs,
		specification.ProductSort{SortBy: specification.SortPopular},
		specification.Pagination{Limit: limit * preferencePoolFactor},
	)

	pool, err := repo.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(prefs.Brands) > 0 {
		sort.SliceStable(pool, func(i, j int) bool {
			return matchesBrand(pool[i], prefs.Brands) && !matchesBrand(pool[j], prefs.Brands)
		})
	}
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool, nil
}

func matchesBrand(p *entity.Product, brands []string) bool {
	brand, _ := p.Metadata["brand"].(string)
	for _, b := range brands {
		if brand != "" && strings.EqualFold(brand, b) {
			return true
		}
		for _, tag := range p.Tags {
			if strings.EqualFold(tag, b) {
				return true
			}
		}
	}
	return false
}

// topUp fills picked up to limit from more, skipping duplicates.
func topUp(picked, more []*entity.Product, limit int) []*entity.Product {
	seen := make(map[uuid.UUID]bool, len(picked))
	for _, p := range picked {
		seen[p.Id] = true
	}
	for _, p := range more {
		if len(picked) >= limit {
			break
		}
		if !seen[p.Id] {
			seen[p.Id] = true
			picked = append(picked, p)
		}
	}
	return picked
}

func (s *productService) neighbours(ctx context.Context, repo contract.ProductRepository, product *entity.Product, limit int) ([]*dto.ProductResponse, error) {
	if len(product.Embedding) == 0 {
		return nil, nil
	}

	// one extra row since the product itself is its own best match
	scored, err := repo.SearchSimilar(ctx, product.Embedding, s.cfg.RecommendationThreshold, limit+1)
	if err != nil {
		if errors.Is(err, contract.ErrSemanticSearchUnavailable) {
			return nil, nil
		}
		return nil, err
	}

	result := make([]*dto.ProductResponse, 0, limit)
	for _, sp := range scored {
		if sp.Product.Id == product.Id {
			continue
		}
		if len(result) == limit {
			break
		}
		res := toProductResponse(sp.Product)
		score := sp.Similarity
		res.Similarity = &score
		result = append(result, res)
	}
	return result, nil
}

func (s *productService) byCategory(ctx context.Context, repo contract.ProductRepository, category string, limit int, extra ...specification.Specification) ([]*dto.ProductResponse, error) {
	specs := append([]specification.Specification{
		specification.ByCategory{Category: category},
	}, extra...)
	specs = append(specs,
		specification.ProductSort{SortBy: specification.SortPopular},
		specification.Pagination{Limit: limit},
	)

	products, err := repo.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

func (s *productService) publishEmbed(ctx context.Context, id uuid.UUID) error {
	msgJson, err := json.Marshal(dto.PublishEmbedProductMessage{ProductId: id})
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, msgJson)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	updatedAt := p.CreatedAt
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return &dto.ProductResponse{
		Id:          p.Id,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		ImageUrl:    p.ImageUrl,
		Tags:        tags,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		InStock:     p.InStock,
		Featured:    p.Featured,
		Metadata:    p.Metadata,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func toProductResponses(products []*entity.Product) []*dto.ProductResponse {
	result := make([]*dto.ProductResponse, 0, len(products))
	for _, p := range products {
		result = append(result, toProductResponse(p))
	}
	return result
}

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
