package dto

import (
	"time"

	"github.com/google/uuid"
)

type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

type ProductFilters struct {
	InStock  *bool    `json:"inStock,omitempty"`
	Featured *bool    `json:"featured,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type ProductSearchRequest struct {
	Query      string          `json:"query"`
	Category   string          `json:"category"`
	PriceRange *PriceRange     `json:"priceRange"`
	Filters    *ProductFilters `json:"filters"`
	Limit      int             `json:"limit" validate:"gte=0,lte=100"`
	Offset     int             `json:"offset" validate:"gte=0"`
	SortBy     string          `json:"sortBy" validate:"omitempty,oneof=RELEVANCE PRICE_LOW_TO_HIGH PRICE_HIGH_TO_LOW NEWEST POPULAR RATING"`
}

type ProductResponse struct {
	Id          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Price       float64                `json:"price"`
	Category    string                 `json:"category"`
	ImageUrl    string                 `json:"imageUrl,omitempty"`
	Tags        []string               `json:"tags"`
	Rating      float64                `json:"rating"`
	ReviewCount int                    `json:"reviewCount"`
	InStock     bool                   `json:"inStock"`
	Featured    bool                   `json:"featured"`
	Similarity  *float64               `json:"similarity,omitempty"` // only set by semantic or ranked results
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

type AppliedFilters struct {
	Query      string      `json:"query"`
	Category   string      `json:"category,omitempty"`
	PriceRange *PriceRange `json:"priceRange,omitempty"`
	SortBy     string      `json:"sortBy"`
}

type ProductSearchResponse struct {
	Products []*ProductResponse `json:"products"`
	Total    int64              `json:"total"`
	HasMore  bool               `json:"hasMore"`
	Filters  AppliedFilters     `json:"filters"`
}

type RecommendationRequest struct {
	UserId    string `json:"userId"`
	ProductId string `json:"productId"`
	Category  string `json:"category"`
	Limit     int    `json:"limit" validate:"gte=0,lte=50"`
}

type CategoryResponse struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	ProductCount int64  `json:"productCount"`
}

type AddProductRequest struct {
	Name        string                 `json:"name" validate:"required,max=255"`
	Description string                 `json:"description" validate:"required"`
	Price       float64                `json:"price" validate:"gte=0"`
	Category    string                 `json:"category" validate:"required,max=100"`
	ImageUrl    string                 `json:"imageUrl" validate:"omitempty,url"`
	Tags        []string               `json:"tags"`
	InStock     *bool                  `json:"inStock"`
	Featured    bool                   `json:"featured"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type UpdateProductRequest struct {
	Id          uuid.UUID
	Name        *string                `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string                `json:"description"`
	Price       *float64               `json:"price" validate:"omitempty,gte=0"`
	Category    *string                `json:"category" validate:"omitempty,min=1,max=100"`
	ImageUrl    *string                `json:"imageUrl"`
	Tags        []string               `json:"tags"`
	InStock     *bool                  `json:"inStock"`
	Featured    *bool                  `json:"featured"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// PublishEmbedProductMessage asks the ingestion consumer to (re)embed a product.
type PublishEmbedProductMessage struct {
	ProductId uuid.UUID `json:"product_id"`
}
