package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/pkg/rag/outcome"
	"ai-shopping-assistant-be/pkg/similarity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	vec   []float32
	err   error
	dims  int
	calls int
}

func (s *stubProvider) Generate(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	return s.vec, s.err
}

func (s *stubProvider) Dimensions() int { return s.dims }
func (s *stubProvider) Name() string    { return "stub" }

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestLocalProviderDeterministic(t *testing.T) {
	p := NewLocalProvider(1536)

	inputs := []string{"mechanical keyboard", "Hello World", "ünïcödé text", "   spaced   out  "}
	for _, in := range inputs {
		a := p.Embed(in)
		b := p.Embed(in)
		assert.Equal(t, a, b, "input %q", in)
		assert.Len(t, a, 1536)
		assert.InDelta(t, 1.0, norm(a), 1e-5)
	}
}

func TestLocalProviderHistogram(t *testing.T) {
	p := NewLocalProvider(8)

	// 'a' = 97 -> 97 % 8 = 1, 'b' = 98 -> 2
	vec := p.Embed("AB a")
	assert.InDelta(t, 2/math.Sqrt(5), vec[1], 1e-6)
	assert.InDelta(t, 1/math.Sqrt(5), vec[2], 1e-6)
}

func TestLocalProviderEmptyTextIsZeroVector(t *testing.T) {
	p := NewLocalProvider(16)

	vec, err := p.Generate(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, vec, 16)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestFallbackProvider(t *testing.T) {
	ctx := context.Background()
	local := NewLocalProvider(4)

	tests := []struct {
		name       string
		primary    EmbeddingProvider
		wantStatus outcome.Status
		wantVec    []float32
	}{
		{
			name:       "primary ok",
			primary:    &stubProvider{vec: []float32{1, 0, 0, 0}, dims: 4},
			wantStatus: outcome.StatusOk,
			wantVec:    []float32{1, 0, 0, 0},
		},
		{
			name:       "primary error",
			primary:    &stubProvider{err: errors.New("quota exceeded"), dims: 4},
			wantStatus: outcome.StatusDegraded,
			wantVec:    local.Embed("gaming mouse"),
		},
		{
			name:       "primary empty vector",
			primary:    &stubProvider{vec: []float32{}, dims: 4},
			wantStatus: outcome.StatusDegraded,
			wantVec:    local.Embed("gaming mouse"),
		},
		{
			name:       "primary mismatched length",
			primary:    &stubProvider{vec: []float32{1, 2}, dims: 4},
			wantStatus: outcome.StatusDegraded,
			wantVec:    local.Embed("gaming mouse"),
		},
		{
			name:       "no primary",
			primary:    nil,
			wantStatus: outcome.StatusDegraded,
			wantVec:    local.Embed("gaming mouse"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewFallbackProvider(tt.primary, 4, logger.NewNopLogger(), nil)

			res := p.Embed(ctx, "gaming mouse")
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantVec, res.Value)

			vec, err := p.Generate(ctx, "gaming mouse")
			assert.NoError(t, err)
			assert.Equal(t, tt.wantVec, vec)
		})
	}
}

func TestFallbackVectorsAreComparable(t *testing.T) {
	p := NewFallbackProvider(&stubProvider{err: errors.New("down"), dims: 1536}, 1536, logger.NewNopLogger(), nil)

	query := p.Embed(context.Background(), "mechanical keyboard").Value
	product := p.Embed(context.Background(), "Mechanical Gaming Keyboard").Value
	unrelated := p.Embed(context.Background(), "xyz").Value

	assert.Greater(t, similarity.Cosine(query, product), similarity.Cosine(query, unrelated))
	assert.Greater(t, similarity.Cosine(query, product), 0.5)
}

func TestCachedProvider(t *testing.T) {
	inner := &stubProvider{vec: []float32{1, 0}, dims: 2}
	p := NewCachedProvider(inner, time.Minute)

	for i := 0; i < 3; i++ {
		vec, err := p.Generate(context.Background(), "same text")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0}, vec)
	}
	assert.Equal(t, 1, inner.calls)

	failing := &stubProvider{err: errors.New("down"), dims: 2}
	fp := NewCachedProvider(failing, time.Minute)
	_, err := fp.Generate(context.Background(), "x")
	assert.Error(t, err)
	_, err = fp.Generate(context.Background(), "x")
	assert.Error(t, err)
	assert.Equal(t, 2, failing.calls, "errors are not cached")
}

func TestOllamaProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "wireless earbuds", req.Prompt)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float64{3, 4}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "", 2, time.Second)
	vec, err := p.Generate(context.Background(), "wireless earbuds")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)
}

func TestOllamaProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "missing", 2, time.Second)
	_, err := p.Generate(context.Background(), "x")
	assert.Error(t, err)
}

func TestOpenAIProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "text-embedding-3-small", body["model"])
		assert.Equal(t, float64(3), body["dimensions"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",` +
			`"data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],` +
			`"usage":{"prompt_tokens":2,"total_tokens":2}}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("test-key", "text-embedding-3-small", 3,
		WithBaseURL(srv.URL+"/"),
		WithTimeout(2*time.Second),
	)
	require.NoError(t, err)

	vec, err := p.Generate(context.Background(), "running shoes")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "openai", p.Name())
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider("", "m", 3)
	assert.Error(t, err)
}
