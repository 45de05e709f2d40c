package contract

import (
	"context"

	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/repository/specification"
)

type UserRepository interface {
	// FindPreferences returns nil, nil when the user never saved any.
	FindPreferences(ctx context.Context, userId string) (*entity.UserPreferences, error)
	// UpsertPreferences inserts or replaces the row keyed by UserId.
	UpsertPreferences(ctx context.Context, prefs *entity.UserPreferences) error

	CreateActivity(ctx context.Context, activity *entity.UserActivity) error
	FindActivities(ctx context.Context, specs ...specification.Specification) ([]*entity.UserActivity, error)
	CountActivities(ctx context.Context, specs ...specification.Specification) (int64, error)
}
