package entity

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	Id          uuid.UUID
	Name        string
	Description string
	Price       float64
	Category    string
	ImageUrl    string
	Tags        []string
	Rating      float64
	ReviewCount int
	Popularity  int
	InStock     bool
	Featured    bool
	Metadata    map[string]interface{}
	Embedding   []float32
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}

// EmbeddingText is the document embedded for semantic search.
func (p *Product) EmbeddingText() string {
	return p.Name + " " + p.Description + " " + p.Category
}

type CategoryCount struct {
	Name  string
	Count int64
}
