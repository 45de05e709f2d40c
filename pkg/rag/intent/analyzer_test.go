package intent

import (
	"context"
	"errors"
	"testing"

	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/pkg/llm"
	"ai-shopping-assistant-be/pkg/rag/outcome"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	reply string
	err   error

	gotHistory []llm.Message
	gotOptions llm.Options
}

func (s *stubLLM) Chat(_ context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	s.gotHistory = history
	s.gotOptions = llm.Apply(llm.Options{}, opts...)
	return s.reply, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (s *stubLLM) Name() string { return "stub" }

func TestAnalyzeLLMFailureReturnsDefaults(t *testing.T) {
	a := NewAnalyzer(&stubLLM{err: errors.New("model overloaded")}, logger.NewNopLogger(), nil)

	res := a.Analyze(context.Background(), "I love this!")

	assert.Equal(t, outcome.StatusDegraded, res.Status)
	assert.Equal(t, Analysis{
		Intent:     "general",
		Entities:   []Entity{},
		Sentiment:  Sentiment{Score: 0, Label: "neutral"},
		Confidence: 0.5,
	}, res.Value)
}

func TestAnalyzeUsesLowTemperatureAndBoundedTokens(t *testing.T) {
	stub := &stubLLM{reply: `{"intent":"search","entities":["keyboard"],"sentiment":"positive","confidence":0.9}`}
	a := NewAnalyzer(stub, logger.NewNopLogger(), nil)

	res := a.Analyze(context.Background(), "find me a keyboard")

	require.Equal(t, outcome.StatusOk, res.Status)
	assert.Equal(t, 0.3, stub.gotOptions.Temperature)
	assert.Equal(t, 150, stub.gotOptions.MaxTokens)
	require.Len(t, stub.gotHistory, 2)
	assert.Equal(t, llm.RoleSystem, stub.gotHistory[0].Role)
	assert.Equal(t, "find me a keyboard", stub.gotHistory[1].Content)

	assert.Equal(t, "search", res.Value.Intent)
	assert.Equal(t, []Entity{{Type: "entity", Value: "keyboard"}}, res.Value.Entities)
	assert.Equal(t, Sentiment{Score: 0.7, Label: "positive"}, res.Value.Sentiment)
	assert.Equal(t, 0.9, res.Value.Confidence)
}

func TestAnalyzeMalformedOutput(t *testing.T) {
	a := NewAnalyzer(&stubLLM{reply: "Sure! The intent is search."}, logger.NewNopLogger(), nil)

	res := a.Analyze(context.Background(), "find me a keyboard")

	assert.Equal(t, outcome.StatusDegraded, res.Status)
	assert.Equal(t, DefaultAnalysis(), res.Value)
}

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Analysis
		wantErr bool
	}{
		{
			name: "fenced json with structured sentiment",
			raw:  "```json\n{\"intent\":\"question\",\"sentiment\":{\"score\":-0.2,\"label\":\"negative\"},\"confidence\":\"0.8\"}\n```",
			want: Analysis{Intent: "question", Entities: []Entity{}, Sentiment: Sentiment{Score: -0.2, Label: "negative"}, Confidence: 0.8},
		},
		{
			name: "missing fields fall back",
			raw:  `{}`,
			want: DefaultAnalysis(),
		},
		{
			name: "negative label and clamped confidence",
			raw:  `{"intent":"complaint","sentiment":"NEGATIVE","confidence":7}`,
			want: Analysis{Intent: "complaint", Entities: []Entity{}, Sentiment: Sentiment{Score: -0.7, Label: "negative"}, Confidence: 1},
		},
		{
			name: "unknown label is neutral",
			raw:  `{"intent":"greeting","sentiment":"excited"}`,
			want: Analysis{Intent: "greeting", Entities: []Entity{}, Sentiment: Sentiment{Score: 0, Label: "neutral"}, Confidence: 0.5},
		},
		{
			name: "structured sentiment with bad score",
			raw:  `{"intent":"search","sentiment":{"score":"n/a"}}`,
			want: Analysis{Intent: "search", Entities: []Entity{}, Sentiment: Sentiment{Score: 0, Label: "neutral"}, Confidence: 0.5},
		},
		{
			name: "object entities",
			raw:  `Result: {"intent":"search","entities":[{"type":"category","value":"shoes"},{"name":"Nike"},{"type":"price"}]}`,
			want: Analysis{
				Intent:     "search",
				Entities:   []Entity{{Type: "category", Value: "shoes"}, {Type: "entity", Value: "Nike"}},
				Sentiment:  Sentiment{Score: 0, Label: "neutral"},
				Confidence: 0.5,
			},
		},
		{
			name: "trailing prose after object",
			raw:  `{"intent":"search"} Hope this helps`,
			want: Analysis{Intent: "search", Entities: []Entity{}, Sentiment: Sentiment{Score: 0, Label: "neutral"}, Confidence: 0.5},
		},
		{name: "empty", raw: "   ", wantErr: true},
		{name: "not json", raw: "{intent: search", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnalysis(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSentimentFromLabel(t *testing.T) {
	assert.Equal(t, Sentiment{Score: 0.7, Label: "positive"}, SentimentFromLabel("Positive"))
	assert.Equal(t, Sentiment{Score: -0.7, Label: "negative"}, SentimentFromLabel("negative"))
	assert.Equal(t, Sentiment{Score: 0, Label: "neutral"}, SentimentFromLabel("neutral"))
	assert.Equal(t, Sentiment{Score: 0, Label: "neutral"}, SentimentFromLabel(""))
}
