// Package ollama talks to a local Ollama server through its /api/chat
// endpoint with streaming off.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-shopping-assistant-be/pkg/llm"
)

const (
	defaultTimeout = 120 * time.Second
	// Error bodies are echoed into errors; keep them short.
	maxErrorBody = 512
)

type Provider struct {
	baseURL string
	model   string
	name    string
	client  *http.Client
}

var _ llm.LLMProvider = (*Provider)(nil)

func New(baseURL, model string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		name:    "ollama",
		client:  &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// chatResponse also carries Ollama's {"error": "..."} body.
type chatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error"`
}

func toChatMessages(history []llm.Message) []chatMessage {
	out := make([]chatMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = llm.RoleAssistant
		}
		out[i] = chatMessage{Role: role, Content: msg.Content}
	}
	return out
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{Temperature: 0.7, Model: p.model}, opts...)

	body, err := json.Marshal(chatRequest{
		Model:    options.Model,
		Messages: toChatMessages(history),
		Stream:   false,
		Options: &chatOptions{
			Temperature: options.Temperature,
			NumPredict:  options.MaxTokens,
		},
	})
	if err != nil {
		return "", p.wrap("encode request", err)
	}

	res, err := p.post(ctx, "/api/chat", body)
	if err != nil {
		return "", err
	}
	if res.Error != "" {
		return "", fmt.Errorf("%s: model %q: %s", p.name, options.Model, res.Error)
	}
	content := strings.TrimSpace(res.Message.Content)
	if content == "" {
		return "", fmt.Errorf("%s: model %q: %w", p.name, options.Model, llm.ErrEmptyResponse)
	}
	return content, nil
}

func (p *Provider) post(ctx context.Context, path string, body []byte) (*chatResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, p.wrap("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, p.wrap("request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, p.wrap("read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, fmt.Errorf("%s: status %d: %s", p.name, resp.StatusCode, msg)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, p.wrap("decode response", err)
	}
	return &out, nil
}

func (p *Provider) wrap(step string, err error) error {
	return fmt.Errorf("%s: %s: %w", p.name, step, err)
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (p *Provider) Name() string {
	return p.name
}
