package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ai-shopping-assistant-be/internal/repository/memory"
	"ai-shopping-assistant-be/internal/repository/specification"
	"ai-shopping-assistant-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingEmbedder struct{ embedding.EmbeddingProvider }

func (failingEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("provider down")
}

func TestBundledSeedParses(t *testing.T) {
	var products []seedProduct
	require.NoError(t, json.Unmarshal(defaultSeed, &products))
	require.NotEmpty(t, products)
	for _, p := range products {
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Category)
		assert.Greater(t, p.Price, 0.0)
	}
}

func TestSeedProductsSkipsExistingNames(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewRepositoryFactory(memory.NewStore())
	local := embedding.NewLocalProvider(8)
	inStock := false
	products := []seedProduct{
		{Name: "K2 Keyboard", Description: "mechanical", Category: "Electronics", Price: 89},
		{Name: "Desk Lamp", Description: "warm light", Category: "Home", Price: 25, InStock: &inStock},
	}

	created, skipped, err := seedProducts(ctx, factory, local, products)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, 0, skipped)

	products[0].Name = "k2 keyboard "
	created, skipped, err = seedProducts(ctx, factory, local, products)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 2, skipped)

	repo := factory.NewUnitOfWork(ctx).ProductRepository()
	lamp, err := repo.FindOne(ctx, specification.ByName{Name: "Desk Lamp"})
	require.NoError(t, err)
	require.NotNil(t, lamp)
	assert.False(t, lamp.InStock)
	assert.Len(t, lamp.Embedding, 8)
}

func TestReembedOnlyMissingVectors(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewRepositoryFactory(memory.NewStore())
	local := embedding.NewLocalProvider(8)

	_, _, err := seedProducts(ctx, factory, nil, []seedProduct{
		{Name: "K2 Keyboard", Description: "mechanical", Category: "Electronics", Price: 89},
		{Name: "Desk Lamp", Description: "warm light", Category: "Home", Price: 25},
	})
	require.NoError(t, err)

	done, failed, err := reembed(ctx, factory, failingEmbedder{local}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, done)
	assert.Equal(t, 2, failed)

	done, failed, err = reembed(ctx, factory, local, false)
	require.NoError(t, err)
	assert.Equal(t, 2, done)
	assert.Equal(t, 0, failed)

	done, _, err = reembed(ctx, factory, local, false)
	require.NoError(t, err)
	assert.Equal(t, 0, done, "nothing left to embed")

	done, _, err = reembed(ctx, factory, local, true)
	require.NoError(t, err)
	assert.Equal(t, 2, done)
}
