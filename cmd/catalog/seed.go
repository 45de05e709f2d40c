package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"ai-shopping-assistant-be/internal/config"
	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/repository/specification"
	"ai-shopping-assistant-be/internal/repository/unitofwork"
	"ai-shopping-assistant-be/pkg/embedding"

	"github.com/spf13/cobra"
)

//go:embed seed_products.json
var defaultSeed []byte

type seedProduct struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Price       float64                `json:"price"`
	Category    string                 `json:"category"`
	ImageUrl    string                 `json:"imageUrl"`
	Tags        []string               `json:"tags"`
	Rating      float64                `json:"rating"`
	ReviewCount int                    `json:"reviewCount"`
	Popularity  int                    `json:"popularity"`
	InStock     *bool                  `json:"inStock"`
	Featured    bool                   `json:"featured"`
	Metadata    map[string]interface{} `json:"metadata"`
}

func (s seedProduct) toEntity() *entity.Product {
	inStock := true
	if s.InStock != nil {
		inStock = *s.InStock
	}
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return &entity.Product{
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		Category:    s.Category,
		ImageUrl:    s.ImageUrl,
		Tags:        tags,
		Rating:      s.Rating,
		ReviewCount: s.ReviewCount,
		Popularity:  s.Popularity,
		InStock:     inStock,
		Featured:    s.Featured,
		Metadata:    s.Metadata,
	}
}

var (
	seedFile    string
	seedNoEmbed bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert products that do not exist yet and embed them",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := defaultSeed
		if seedFile != "" {
			data, err := os.ReadFile(seedFile)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			raw = data
		}

		var products []seedProduct
		if err := json.Unmarshal(raw, &products); err != nil {
			return fmt.Errorf("parse seed file: %w", err)
		}

		catalog, err := openCatalog(config.Load())
		if err != nil {
			return err
		}

		var embedder embedding.EmbeddingProvider
		if !seedNoEmbed {
			embedder = catalog.Embedder
		}

		created, skipped, err := seedProducts(cmd.Context(), catalog.UowFactory, embedder, products)
		if err != nil {
			failure("Seeding stopped: %v", err)
			return err
		}
		success("Seeded %d products (%d already present)", created, skipped)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "JSON file with products (defaults to the bundled catalog)")
	seedCmd.Flags().BoolVar(&seedNoEmbed, "no-embed", false, "skip embedding, leaving vectors for reembed")
}

// seedProducts creates every product whose name is not taken yet. Embedding
// failures are reported and leave the product for a later reembed.
func seedProducts(ctx context.Context, uowFactory unitofwork.RepositoryFactory, embedder embedding.EmbeddingProvider, products []seedProduct) (int, int, error) {
	repo := uowFactory.NewUnitOfWork(ctx).ProductRepository()
	bar := newProgressBar(len(products), "seeding")

	created, skipped := 0, 0
	for _, sp := range products {
		_ = bar.Add(1)

		existing, err := repo.FindOne(ctx, specification.ByName{Name: sp.Name})
		if err != nil {
			return created, skipped, err
		}
		if existing != nil {
			skipped++
			continue
		}

		product := sp.toEntity()
		if err := repo.Create(ctx, product); err != nil {
			return created, skipped, fmt.Errorf("create %q: %w", sp.Name, err)
		}
		created++

		if embedder == nil {
			continue
		}
		if err := embedProduct(ctx, repo, embedder, product); err != nil {
			warn("Embedding %q failed: %v", product.Name, err)
		}
	}
	return created, skipped, nil
}
