package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

var setupSQL = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	`CREATE EXTENSION IF NOT EXISTS vector;`,
}

var indexSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_products_embedding_hnsw ON products USING hnsw (embedding vector_cosine_ops);`,
	`CREATE INDEX IF NOT EXISTS idx_products_tags ON products USING gin (tags);`,
}

// Migrate installs the required extensions, runs AutoMigrate for models and
// creates the indexes gorm tags cannot express.
func Migrate(db *gorm.DB, models ...interface{}) error {
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("setup %q: %w", sql, err)
		}
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, sql := range indexSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("[WARN] Failed to create index: %v", err)
		}
	}

	return nil
}
