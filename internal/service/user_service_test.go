package service

import (
	"context"
	"errors"
	"testing"

	"ai-shopping-assistant-be/internal/dto"
	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/pkg/serverutils"
	"ai-shopping-assistant-be/internal/repository/contract"
	"ai-shopping-assistant-be/internal/repository/memory"
	"ai-shopping-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture(t *testing.T) (IUserService, unitofwork.RepositoryFactory, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	factory := memory.NewRepositoryFactory(store)
	return NewUserService(factory, logger.NewNopLogger()), factory, store
}

func TestUpdatePreferencesCreatesThenMerges(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.GetPreferences(ctx, "u1")
	assert.ErrorIs(t, err, ErrPreferencesNotFound)
	assert.ErrorIs(t, err, contract.ErrRecordNotFound)

	created, err := svc.UpdatePreferences(ctx, &dto.UpdateUserPreferencesRequest{
		UserId:     "u1",
		Categories: []string{"Electronics", "electronics", " ", "Books"},
		PriceRange: &dto.PriceRange{Max: floatPtr(300)},
		Notifications: &dto.NotificationPreferences{
			Email: true,
			Deals: true,
		},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.Id)
	assert.Equal(t, []string{"Electronics", "Books"}, created.Categories)
	assert.Equal(t, []string{}, created.Brands)
	require.NotNil(t, created.PriceRange)
	assert.Nil(t, created.PriceRange.Min)
	assert.Equal(t, 300.0, *created.PriceRange.Max)
	assert.True(t, created.Notifications.Email)
	assert.False(t, created.Notifications.Push)

	merged, err := svc.UpdatePreferences(ctx, &dto.UpdateUserPreferencesRequest{
		UserId: "u1",
		Brands: []string{"Keychron"},
	})
	require.NoError(t, err)
	assert.Equal(t, created.Id, merged.Id, "one row per user")
	assert.Equal(t, []string{"Electronics", "Books"}, merged.Categories, "untouched fields survive")
	assert.Equal(t, []string{"Keychron"}, merged.Brands)
	assert.Equal(t, 300.0, *merged.PriceRange.Max)
	assert.True(t, merged.Notifications.Deals)

	got, err := svc.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, merged.Brands, got.Brands)
}

func TestUpdatePreferencesRejectsInvertedPriceRange(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	_, err := svc.UpdatePreferences(context.Background(), &dto.UpdateUserPreferencesRequest{
		UserId:     "u1",
		PriceRange: &dto.PriceRange{Min: floatPtr(100), Max: floatPtr(10)},
	})

	var vErr *serverutils.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "priceRange")
}

func TestTrackActivityTagsProductCategory(t *testing.T) {
	svc, factory, _ := newUserFixture(t)
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	mug := &entity.Product{Name: "Mug", Category: "Kitchen"}
	require.NoError(t, uow.ProductRepository().Create(ctx, mug))

	require.NoError(t, svc.TrackActivity(ctx, &dto.TrackUserActivityRequest{
		UserId:    "u1",
		Action:    entity.ActionViewProduct,
		ProductId: mug.Id.String(),
	}))
	require.NoError(t, svc.TrackActivity(ctx, &dto.TrackUserActivityRequest{
		UserId:   "u1",
		Action:   entity.ActionSearch,
		Metadata: map[string]interface{}{"query": "espresso cups"},
	}))

	activities, err := uow.UserRepository().FindActivities(ctx)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	require.NotNil(t, activities[0].ProductId)
	assert.Equal(t, mug.Id, *activities[0].ProductId)
	assert.Equal(t, "Kitchen", activities[0].Metadata["category"])

	err = svc.TrackActivity(ctx, &dto.TrackUserActivityRequest{UserId: "u1", Action: entity.ActionLike, ProductId: "nope"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestGetProfile(t *testing.T) {
	svc, factory, _ := newUserFixture(t)
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	_, err := svc.GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.UpdatePreferences(ctx, &dto.UpdateUserPreferencesRequest{UserId: "u1", Categories: []string{"Books"}})
	require.NoError(t, err)
	for _, a := range []dto.TrackUserActivityRequest{
		{UserId: "u1", Action: entity.ActionSearch, Metadata: map[string]interface{}{"query": "first"}},
		{UserId: "u1", Action: entity.ActionSearch, Metadata: map[string]interface{}{"query": "second", "category": "Books"}},
		{UserId: "u1", Action: entity.ActionViewProduct, Metadata: map[string]interface{}{"category": "Garden"}},
		{UserId: "u1", Action: entity.ActionPurchase, Metadata: map[string]interface{}{"category": "Books"}},
		{UserId: "u2", Action: entity.ActionSearch, Metadata: map[string]interface{}{"query": "other user"}},
	} {
		a := a
		require.NoError(t, svc.TrackActivity(ctx, &a))
	}
	require.NoError(t, uow.ConversationRepository().Create(ctx, &entity.ConversationTurn{UserId: "u1", UserMessage: "hi", AiResponse: "hello"}))
	require.NoError(t, uow.ConversationSessionRepository().Create(ctx, &entity.ConversationSession{UserId: "u1", Title: "New Conversation"}))

	profile, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", profile.UserId)
	require.NotNil(t, profile.Preferences)
	assert.Equal(t, []string{"Books"}, profile.Preferences.Categories)
	assert.Equal(t, int64(2), profile.ActivitySummary.TotalSearches)
	assert.Equal(t, int64(1), profile.ActivitySummary.TotalViews)
	assert.Equal(t, int64(1), profile.ActivitySummary.TotalPurchases)
	assert.Equal(t, []string{"second", "first"}, profile.ActivitySummary.LastSearches)
	assert.Equal(t, []string{"Books", "Garden"}, profile.ActivitySummary.FavoriteCategories)
	assert.Equal(t, int64(1), profile.ConversationCount)
	assert.Equal(t, int64(1), profile.SessionCount)
	assert.False(t, profile.LastActive.Before(profile.CreatedAt))
}

func TestGetProfileStoreFailure(t *testing.T) {
	svc, _, store := newUserFixture(t)
	store.FailWith = errors.New("connection refused")

	_, err := svc.GetProfile(context.Background(), "u1")
	assert.EqualError(t, err, "connection refused")
}
