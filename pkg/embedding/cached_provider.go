package embedding

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider memoizes successful embeddings of the wrapped provider.
// Failures are never cached so the next call retries the remote.
type CachedProvider struct {
	inner EmbeddingProvider
	cache *cache.Cache
}

var _ EmbeddingProvider = (*CachedProvider)(nil)

func NewCachedProvider(inner EmbeddingProvider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CachedProvider{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (p *CachedProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	key := p.inner.Name() + ":" + text
	if x, found := p.cache.Get(key); found {
		return x.([]float32), nil
	}

	vec, err := p.inner.Generate(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == p.inner.Dimensions() {
		p.cache.Set(key, vec, cache.DefaultExpiration)
	}
	return vec, nil
}

func (p *CachedProvider) Dimensions() int {
	return p.inner.Dimensions()
}

func (p *CachedProvider) Name() string {
	return p.inner.Name()
}
