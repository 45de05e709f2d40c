package factory

import (
	"fmt"
	"time"

	"ai-shopping-assistant-be/pkg/llm"
	"ai-shopping-assistant-be/pkg/llm/ollama"
	"ai-shopping-assistant-be/pkg/llm/openai"
)

type Config struct {
	Provider        string // "openai", "azure" or "ollama"
	Model           string
	OllamaBaseURL   string
	APIKey          string
	AzureEndpoint   string
	AzureAPIVersion string
	Timeout         time.Duration
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.New(baseURL, cfg.Model, cfg.Timeout), nil
	case "openai":
		return openai.New(cfg.APIKey, cfg.Model, openai.WithTimeout(cfg.Timeout))
	case "azure":
		if cfg.AzureEndpoint == "" {
			return nil, fmt.Errorf("azure LLM provider requires an endpoint")
		}
		return openai.New(cfg.APIKey, cfg.Model,
			openai.WithAzure(cfg.AzureEndpoint, cfg.AzureAPIVersion),
			openai.WithTimeout(cfg.Timeout),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
