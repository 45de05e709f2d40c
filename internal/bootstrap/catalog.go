package bootstrap

import (
	"ai-shopping-assistant-be/internal/config"
	"ai-shopping-assistant-be/internal/observe"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/repository/unitofwork"
	"ai-shopping-assistant-be/internal/service"
	"ai-shopping-assistant-be/pkg/embedding"
	"ai-shopping-assistant-be/pkg/rag/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

// Catalog is the slice of the application the catalog CLI needs. Embedding
// runs inline, so nothing listens on the embed topic.
type Catalog struct {
	UowFactory unitofwork.RepositoryFactory
	Embedder   embedding.EmbeddingProvider
	Products   service.IProductService
}

func NewCatalog(db *gorm.DB, cfg *config.Config, log logger.ILogger) (*Catalog, error) {
	uowFactory := newRepositoryFactory(db)

	primary, err := newEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}
	embedder := embedding.NewCachedProvider(primary, cfg.Ai.EmbeddingCacheTTL)
	fallback := embedding.NewFallbackProvider(embedder, cfg.Ai.EmbeddingDimensions, log, observe.DefaultMetrics())

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	retriever := retrieval.NewRetriever(retrieval.NewRepositoryCatalog(uowFactory), fallback, log)

	products := service.NewProductService(
		uowFactory,
		retriever,
		service.NewPublisherService(cfg.Keys.EmbedTopic, pubSub),
		log,
		service.ProductServiceConfig{
			SearchThreshold:         cfg.Retrieval.SearchThreshold,
			RecommendationThreshold: cfg.Retrieval.RecommendationThreshold,
		},
	)

	return &Catalog{
		UowFactory: uowFactory,
		Embedder:   embedder,
		Products:   products,
	}, nil
}
