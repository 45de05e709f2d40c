package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	Version            string
	LogFilePath        string
	WsLogFilePath      string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection  string
	AutoMigrate bool
}

type APIKeys struct {
	OpenAI          string
	AzureEndpoint   string
	AzureAPIKey     string
	AzureAPIVersion string
	JwtSecret       string
	EmbedTopic      string // Product embedding topic
}

type AIConfig struct {
	EmbeddingProvider   string // "openai", "azure" or "ollama"
	EmbeddingModel      string
	EmbeddingDimensions int
	EmbeddingCacheTTL   time.Duration
	OllamaBaseURL       string
	OllamaModel         string
	LLMProvider         string // "openai", "azure" or "ollama"
	LLMModel            string
	ProviderTimeout     time.Duration
}

// RetrievalConfig holds the relevance knobs per call site. It can be
// overridden from a YAML file pointed to by ASSISTANT_CONFIG_FILE.
type RetrievalConfig struct {
	ChatThreshold            float64 `yaml:"chat_threshold"`
	ChatMatchCount           int     `yaml:"chat_match_count"`
	SearchThreshold          float64 `yaml:"search_threshold"`
	SearchMatchCount         int     `yaml:"search_match_count"`
	RecommendationThreshold  float64 `yaml:"recommendation_threshold"`
	RecommendationMatchCount int     `yaml:"recommendation_match_count"`
	HistoryWindow            int     `yaml:"history_window"`
	PromptCandidates         int     `yaml:"prompt_candidates"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "4000"),
			Environment:        getEnv("GO_ENV", "development"),
			Version:            getEnv("APP_VERSION", "1.0.0"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/realtime.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection:  getEnv("DB_CONNECTION_STRING", ""),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Keys: APIKeys{
			OpenAI:          getEnv("OPENAI_API_KEY", ""),
			AzureEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
			AzureAPIKey:     getEnv("AZURE_OPENAI_API_KEY", ""),
			AzureAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2024-06-01"),
			JwtSecret:       getEnv("JWT_SECRET", ""),
			EmbedTopic:      getEnv("EMBED_PRODUCT_TOPIC_NAME", "EMBED_PRODUCT"),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
			EmbeddingCacheTTL:   getEnvAsDuration("EMBEDDING_CACHE_TTL", 30*time.Minute),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:         getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:         getEnv("LLM_PROVIDER", "openai"),
			LLMModel:            getEnv("LLM_MODEL", "gpt-3.5-turbo"),
			ProviderTimeout:     getEnvAsDuration("PROVIDER_TIMEOUT", 30*time.Second),
		},
		Retrieval: RetrievalConfig{
			ChatThreshold:            getEnvAsFloat("CHAT_MATCH_THRESHOLD", 0.6),
			ChatMatchCount:           getEnvAsInt("CHAT_MATCH_COUNT", 5),
			SearchThreshold:          getEnvAsFloat("SEARCH_MATCH_THRESHOLD", 0.7),
			SearchMatchCount:         getEnvAsInt("SEARCH_MATCH_COUNT", 10),
			RecommendationThreshold:  getEnvAsFloat("RECOMMENDATION_MATCH_THRESHOLD", 0.2),
			RecommendationMatchCount: getEnvAsInt("RECOMMENDATION_MATCH_COUNT", 3),
			HistoryWindow:            getEnvAsInt("HISTORY_WINDOW", 5),
			PromptCandidates:         getEnvAsInt("PROMPT_CANDIDATES", 3),
		},
	}

	if path := getEnv("ASSISTANT_CONFIG_FILE", ""); path != "" {
		if err := cfg.Retrieval.Overlay(path); err != nil {
			log.Printf("[WARN] Failed to apply retrieval overlay %s: %v", path, err)
		}
	}

	return cfg
}

// Overlay reads a YAML document and replaces every field it sets.
// Fields absent from the file keep their current values.
func (r *RetrievalConfig) Overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read overlay: %w", err)
	}

	var doc struct {
		Retrieval RetrievalConfig `yaml:"retrieval"`
	}
	doc.Retrieval = *r
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse overlay: %w", err)
	}

	*r = doc.Retrieval
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
