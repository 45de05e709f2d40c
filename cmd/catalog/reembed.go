package main

import (
	"context"
	"fmt"

	"ai-shopping-assistant-be/internal/config"
	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/repository/contract"
	"ai-shopping-assistant-be/internal/repository/specification"
	"ai-shopping-assistant-be/internal/repository/unitofwork"
	"ai-shopping-assistant-be/pkg/embedding"

	"github.com/spf13/cobra"
)

var reembedAll bool

var reembedCmd = &cobra.Command{
	Use:   "reembed",
	Short: "Embed products whose vector is missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := openCatalog(config.Load())
		if err != nil {
			return err
		}

		done, failed, err := reembed(cmd.Context(), catalog.UowFactory, catalog.Embedder, reembedAll)
		if err != nil {
			failure("Re-embedding stopped: %v", err)
			return err
		}
		if failed > 0 {
			warn("%d products could not be embedded", failed)
		}
		success("Embedded %d products", done)
		return nil
	},
}

func init() {
	reembedCmd.Flags().BoolVar(&reembedAll, "all", false, "re-embed every product, not only those missing a vector")
}

func reembed(ctx context.Context, uowFactory unitofwork.RepositoryFactory, embedder embedding.EmbeddingProvider, all bool) (int, int, error) {
	repo := uowFactory.NewUnitOfWork(ctx).ProductRepository()

	var specs []specification.Specification
	if !all {
		specs = append(specs, specification.MissingEmbedding{})
	}
	products, err := repo.FindAll(ctx, specs...)
	if err != nil {
		return 0, 0, err
	}
	if len(products) == 0 {
		return 0, 0, nil
	}

	bar := newProgressBar(len(products), "embedding")
	done, failed := 0, 0
	for _, p := range products {
		if err := embedProduct(ctx, repo, embedder, p); err != nil {
			failed++
			if verbose {
				warn("%s: %v", p.Name, err)
			}
		} else {
			done++
		}
		_ = bar.Add(1)
	}
	return done, failed, nil
}

func embedProduct(ctx context.Context, repo contract.ProductRepository, embedder embedding.EmbeddingProvider, p *entity.Product) error {
	vec, err := embedder.Generate(ctx, p.EmbeddingText())
	if err != nil {
		return err
	}
	if len(vec) != embedder.Dimensions() {
		return fmt.Errorf("expected %d dimensions, got %d", embedder.Dimensions(), len(vec))
	}
	return repo.UpdateEmbedding(ctx, p.Id, vec)
}
