package specification

import (
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(category) = ?", strings.ToLower(s.Category))
}

// ByCategories matches any of Categories, ignoring case.
type ByCategories struct {
	Categories []string
}

func (s ByCategories) Apply(db *gorm.DB) *gorm.DB {
	lowered := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		lowered[i] = strings.ToLower(c)
	}
	return db.Where("LOWER(category) IN ?", lowered)
}

// ByName matches a product name case-insensitively.
type ByName struct {
	Name string
}

func (s ByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(s.Name)))
}

// PriceBetween applies inclusive bounds; a nil bound is open.
type PriceBetween struct {
	Min *float64
	Max *float64
}

func (s PriceBetween) Apply(db *gorm.DB) *gorm.DB {
	if s.Min != nil {
		db = db.Where("price >= ?", *s.Min)
	}
	if s.Max != nil {
		db = db.Where("price <= ?", *s.Max)
	}
	return db
}

type FeaturedOnly struct{}

func (s FeaturedOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("featured = ?", true)
}

type InStockOnly struct{}

func (s InStockOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("in_stock = ?", true)
}

// HasAnyTag keeps products carrying at least one of Tags.
type HasAnyTag struct {
	Tags []string
}

func (s HasAnyTag) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tags && ?", pq.StringArray(s.Tags))
}

type MissingEmbedding struct{}

func (s MissingEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding IS NULL")
}

type ExcludeID struct {
	ID interface{}
}

func (s ExcludeID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id <> ?", s.ID)
}

const (
	SortRelevance      = "RELEVANCE"
	SortPriceLowToHigh = "PRICE_LOW_TO_HIGH"
	SortPriceHighToLow = "PRICE_HIGH_TO_LOW"
	SortNewest         = "NEWEST"
	SortPopular        = "POPULAR"
	SortRating         = "RATING"
)

// ProductSort maps a public sort key onto an ORDER BY clause. Relevance has
// no meaning without a query vector and falls back to newest first. The id
// column keeps paging stable between equal keys.
type ProductSort struct {
	SortBy string
}

func (s ProductSort) Apply(db *gorm.DB) *gorm.DB {
	switch s.SortBy {
	case SortPriceLowToHigh:
		db = db.Order("price ASC")
	case SortPriceHighToLow:
		db = db.Order("price DESC")
	case SortPopular:
		db = db.Order("popularity DESC")
	case SortRating:
		db = db.Order("rating DESC")
	default:
		db = db.Order("created_at DESC")
	}
	return db.Order("id ASC")
}
