package bootstrap

import (
	"context"
	"fmt"
	"log"

	"ai-shopping-assistant-be/internal/config"
	"ai-shopping-assistant-be/internal/controller"
	"ai-shopping-assistant-be/internal/graphql"
	"ai-shopping-assistant-be/internal/observe"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/repository/memory"
	"ai-shopping-assistant-be/internal/repository/unitofwork"
	"ai-shopping-assistant-be/internal/service"
	"ai-shopping-assistant-be/internal/websocket"
	"ai-shopping-assistant-be/pkg/embedding"
	"ai-shopping-assistant-be/pkg/events"
	"ai-shopping-assistant-be/pkg/llm"
	"ai-shopping-assistant-be/pkg/llm/factory"
	"ai-shopping-assistant-be/pkg/rag/history"
	"ai-shopping-assistant-be/pkg/rag/intent"
	"ai-shopping-assistant-be/pkg/rag/orchestrator"
	"ai-shopping-assistant-be/pkg/rag/response"
	"ai-shopping-assistant-be/pkg/rag/retrieval"

	pktNats "ai-shopping-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	GraphQLController controller.IGraphQLController
	HealthController  controller.IHealthController
	ProductController controller.IProductController
	ChatController    controller.IChatController
	UserController    controller.IUserController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	ChatRelay       *service.ChatRelayService

	// WebSockets
	WebSocketHub *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires the application. A nil db selects the in-memory
// repositories.
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	metrics := observe.DefaultMetrics()

	uowFactory := newRepositoryFactory(db)

	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. AI Providers
	primary, err := newEmbeddingProvider(cfg)
	if err != nil {
		log.Printf("[WARN] Embedding provider unavailable, using local embeddings: %v", err)
		primary = embedding.NewLocalProvider(cfg.Ai.EmbeddingDimensions)
	}
	cached := embedding.NewCachedProvider(primary, cfg.Ai.EmbeddingCacheTTL)
	embedder := embedding.NewFallbackProvider(cached, cfg.Ai.EmbeddingDimensions, sysLogger, metrics)
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", primary.Name(), cfg.Ai.EmbeddingModel)

	llmProvider, err := newLLMProvider(cfg)
	if err != nil {
		log.Printf("[WARN] LLM provider unavailable, replies will use fallbacks: %v", err)
		llmProvider = llm.NewUnavailable(err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}

	// Redis
	rdb := newRedisClient(cfg.App.RedisURL)
	hubRedis := rdb
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
			hubRedis = nil
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	c.WebSocketHub = websocket.NewHub(hubRedis, wsLogger)

	// Chat events go through the NATS work queue when it is reachable.
	var chatEvents events.Publisher = c.WebSocketHub
	if natsPub != nil && natsSub != nil {
		chatEvents = natsPub
		c.ChatRelay = service.NewChatRelayService(natsSub, c.WebSocketHub, wsLogger)
	}

	// 5. RAG Pipeline
	rc := cfg.Retrieval
	retriever := retrieval.NewRetriever(retrieval.NewRepositoryCatalog(uowFactory), embedder, sysLogger)
	handler := orchestrator.New(orchestrator.Dependencies{
		History:   history.NewStore(uowFactory, sysLogger),
		Analyzer:  intent.NewAnalyzer(llmProvider, sysLogger, metrics),
		Retriever: retriever,
		Generator: response.NewGenerator(llmProvider, sysLogger, metrics).WithPromptCandidates(rc.PromptCandidates),
		Publisher: chatEvents,
		Logger:    sysLogger,
		Metrics:   metrics,
	}, orchestrator.Config{
		HistoryWindow:  rc.HistoryWindow,
		MatchThreshold: rc.ChatThreshold,
		MatchCount:     rc.ChatMatchCount,
	})

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Keys.EmbedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedTopic,
		uowFactory,
		cached,
		sysLogger,
	)

	chatService := service.NewChatService(uowFactory, handler, sysLogger)
	productService := service.NewProductService(uowFactory, retriever, publisherService, sysLogger, service.ProductServiceConfig{
		SearchThreshold:         rc.SearchThreshold,
		RecommendationThreshold: rc.RecommendationThreshold,
	})
	userService := service.NewUserService(uowFactory, sysLogger)
	healthService := service.NewHealthService(db, rdb, llmConfigured(cfg), cfg.App.Version)

	schema, err := graphql.NewSchema(graphql.NewResolver(chatService, productService, userService, healthService, sysLogger))
	if err != nil {
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}

	// 7. Controllers
	c.GraphQLController = controller.NewGraphQLController(schema, cfg.Keys.JwtSecret)
	c.HealthController = controller.NewHealthController(healthService)
	c.ProductController = controller.NewProductController(productService, cfg.Keys.JwtSecret)
	c.ChatController = controller.NewChatController(chatService, cfg.Keys.JwtSecret)
	c.UserController = controller.NewUserController(userService, cfg.Keys.JwtSecret)

	c.ConsumerService = consumerService

	return c, nil
}

// Start launches the background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("start embedding consumer: %w", err)
	}

	if c.ChatRelay != nil {
		if err := c.ChatRelay.Start(ctx); err != nil {
			return fmt.Errorf("start chat relay: %w", err)
		}
	}
	return nil
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newRepositoryFactory(db *gorm.DB) unitofwork.RepositoryFactory {
	if db != nil {
		return unitofwork.NewRepositoryFactory(db)
	}
	log.Printf("[WARN] DB_CONNECTION_STRING is empty, using the in-memory catalog")
	return memory.NewRepositoryFactory(memory.NewStore())
}

func newEmbeddingProvider(cfg *config.Config) (embedding.EmbeddingProvider, error) {
	ai := cfg.Ai
	switch ai.EmbeddingProvider {
	case "ollama":
		return embedding.NewOllamaProvider(ai.OllamaBaseURL, ai.OllamaModel, ai.EmbeddingDimensions, ai.ProviderTimeout), nil
	case "azure":
		return embedding.NewOpenAIProvider(cfg.Keys.AzureAPIKey, ai.EmbeddingModel, ai.EmbeddingDimensions,
			embedding.WithAzure(cfg.Keys.AzureEndpoint, cfg.Keys.AzureAPIVersion),
			embedding.WithTimeout(ai.ProviderTimeout),
		)
	case "local":
		return embedding.NewLocalProvider(ai.EmbeddingDimensions), nil
	case "openai", "":
		return embedding.NewOpenAIProvider(cfg.Keys.OpenAI, ai.EmbeddingModel, ai.EmbeddingDimensions,
			embedding.WithTimeout(ai.ProviderTimeout),
		)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", ai.EmbeddingProvider)
	}
}

func newLLMProvider(cfg *config.Config) (llm.LLMProvider, error) {
	apiKey := cfg.Keys.OpenAI
	if cfg.Ai.LLMProvider == "azure" {
		apiKey = cfg.Keys.AzureAPIKey
	}
	return factory.NewLLMProvider(factory.Config{
		Provider:        cfg.Ai.LLMProvider,
		Model:           cfg.Ai.LLMModel,
		OllamaBaseURL:   cfg.Ai.OllamaBaseURL,
		APIKey:          apiKey,
		AzureEndpoint:   cfg.Keys.AzureEndpoint,
		AzureAPIVersion: cfg.Keys.AzureAPIVersion,
		Timeout:         cfg.Ai.ProviderTimeout,
	})
}

func llmConfigured(cfg *config.Config) bool {
	switch cfg.Ai.LLMProvider {
	case "ollama":
		return true
	case "azure":
		return cfg.Keys.AzureAPIKey != "" && cfg.Keys.AzureEndpoint != ""
	default:
		return cfg.Keys.OpenAI != ""
	}
}

func newRedisClient(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	return redis.NewClient(opt)
}
