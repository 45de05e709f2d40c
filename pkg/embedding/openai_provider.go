package embedding

import (
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

// OpenAIProvider implements EmbeddingProvider against the OpenAI embeddings
// API or an Azure OpenAI deployment.
type OpenAIProvider struct {
	client     oai.Client
	model      string
	dimensions int
	name       string
}

var _ EmbeddingProvider = (*OpenAIProvider)(nil)

type openAIConfig struct {
	baseURL         string
	azureEndpoint   string
	azureAPIVersion string
	timeout         time.Duration
}

// OpenAIOption is a functional option for OpenAIProvider.
type OpenAIOption func(*openAIConfig)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) {
		c.baseURL = url
	}
}

// WithAzure routes requests to an Azure OpenAI resource. The model passed to
// NewOpenAIProvider is then the deployment name.
func WithAzure(endpoint, apiVersion string) OpenAIOption {
	return func(c *openAIConfig) {
		c.azureEndpoint = endpoint
		c.azureAPIVersion = apiVersion
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *openAIConfig) {
		c.timeout = d
	}
}

func NewOpenAIProvider(apiKey, model string, dimensions int, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai embeddings: apiKey must not be empty")
	}
	if model == "" {
		model = oai.EmbeddingModelTextEmbedding3Small
	}
	if dimensions <= 0 {
		dimensions = 1536
	}

	cfg := &openAIConfig{}
	for _, o := range opts {
		o(cfg)
	}

	name := "openai"
	var reqOpts []option.RequestOption
	if cfg.azureEndpoint != "" {
		name = "azure"
		reqOpts = append(reqOpts,
			azure.WithEndpoint(cfg.azureEndpoint, cfg.azureAPIVersion),
			azure.WithAPIKey(apiKey),
		)
	} else {
		reqOpts = append(reqOpts, option.WithAPIKey(apiKey))
		if cfg.baseURL != "" {
			reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
		}
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts,
			option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
			option.WithMaxRetries(0),
		)
	}

	return &OpenAIProvider{
		client:     oai.NewClient(reqOpts...),
		model:      model,
		dimensions: dimensions,
		name:       name,
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Embeddings.New(ctx, oai.EmbeddingNewParams{
		Model: p.model,
		Input: oai.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(text),
		},
		Dimensions: param.NewOpt(int64(p.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("%s embeddings: embed: %w", p.name, err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return float64ToFloat32(resp.Data[0].Embedding), nil
}

func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}

func (p *OpenAIProvider) Name() string {
	return p.name
}
