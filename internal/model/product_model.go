package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Product struct {
	Id          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string           `gorm:"type:text;not null"`
	Description string           `gorm:"type:text"`
	Price       float64          `gorm:"type:numeric(12,2);not null;default:0;index"`
	Category    string           `gorm:"type:text;index"`
	ImageUrl    string           `gorm:"type:text"`
	Tags        pq.StringArray   `gorm:"type:text[]"`
	Rating      float64          `gorm:"type:numeric(3,2);default:0"`
	ReviewCount int              `gorm:"default:0"`
	Popularity  int              `gorm:"default:0;index"`
	InStock     bool             `gorm:"default:true"`
	Featured    bool             `gorm:"default:false;index"`
	Metadata    datatypes.JSON   `gorm:"type:jsonb"`
	Embedding   *pgvector.Vector `gorm:"type:vector(1536)"` // Filled asynchronously by the ingestion consumer
	CreatedAt   time.Time        `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt   `gorm:"index"`
}

func (Product) TableName() string {
	return "products"
}
