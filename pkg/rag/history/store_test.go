package history

import (
	"context"
	"errors"
	"testing"

	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRecentIsBoundedAndNewestFirst(t *testing.T) {
	store := NewStore(memory.NewRepositoryFactory(memory.NewStore()), logger.NewNopLogger())
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three", "four"} {
		require.NoError(t, store.Append(ctx, &entity.ConversationTurn{UserId: "u1", UserMessage: msg, AiResponse: "ok"}))
	}
	require.NoError(t, store.Append(ctx, &entity.ConversationTurn{UserId: "u2", UserMessage: "other", AiResponse: "ok"}))

	turns, err := store.FetchRecent(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "four", turns[0].UserMessage)
	assert.Equal(t, "two", turns[2].UserMessage)

	empty, err := store.FetchRecent(ctx, "nobody", 3)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAppendCapsProductsMentioned(t *testing.T) {
	store := NewStore(memory.NewRepositoryFactory(memory.NewStore()), logger.NewNopLogger())
	ctx := context.Background()

	turn := &entity.ConversationTurn{
		UserId:            "u1",
		ConversationId:    uuid.New(),
		UserMessage:       "show me keyboards",
		AiResponse:        "here you go",
		ProductsMentioned: []string{"a", "b", "c", "d", "e"},
	}
	require.NoError(t, store.Append(ctx, turn))

	turns, err := store.FetchRecent(ctx, "u1", DefaultWindow)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, []string{"a", "b", "c"}, turns[0].ProductsMentioned)
	assert.NotEqual(t, uuid.Nil, turns[0].Id)
}

func TestStoreErrorsAreWrapped(t *testing.T) {
	backend := memory.NewStore()
	backend.FailWith = errors.New("connection reset")
	store := NewStore(memory.NewRepositoryFactory(backend), logger.NewNopLogger())

	_, err := store.FetchRecent(context.Background(), "u1", 5)
	assert.ErrorIs(t, err, backend.FailWith)

	err = store.Append(context.Background(), &entity.ConversationTurn{UserId: "u1"})
	assert.ErrorIs(t, err, backend.FailWith)
}
