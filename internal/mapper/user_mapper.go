package mapper

import (
	"encoding/json"
	"time"

	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/model"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

// Preferences Mappers

func (m *UserMapper) PreferencesToEntity(p *model.UserPreferences) *entity.UserPreferences {
	if p == nil {
		return nil
	}
	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}
	var notifications entity.NotificationSettings
	if len(p.Notifications) > 0 {
		// A malformed column reads as all-off rather than failing the row.
		_ = json.Unmarshal(p.Notifications, &notifications)
	}
	return &entity.UserPreferences{
		Id:            p.Id,
		UserId:        p.UserId,
		Categories:    nonNil(p.Categories),
		Brands:        nonNil(p.Brands),
		PriceMin:      p.PriceMin,
		PriceMax:      p.PriceMax,
		Notifications: notifications,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *UserMapper) PreferencesToModel(p *entity.UserPreferences) *model.UserPreferences {
	if p == nil {
		return nil
	}
	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}
	notifications, _ := json.Marshal(p.Notifications)
	return &model.UserPreferences{
		Id:            p.Id,
		UserId:        p.UserId,
		Categories:    pq.StringArray(nonNil(p.Categories)),
		Brands:        pq.StringArray(nonNil(p.Brands)),
		PriceMin:      p.PriceMin,
		PriceMax:      p.PriceMax,
		Notifications: datatypes.JSON(notifications),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

// Activity Mappers

func (m *UserMapper) ActivityToEntity(a *model.UserActivity) *entity.UserActivity {
	if a == nil {
		return nil
	}
	return &entity.UserActivity{
		Id:        a.Id,
		UserId:    a.UserId,
		Action:    a.Action,
		ProductId: a.ProductId,
		Metadata:  jsonToMap(a.Metadata),
		CreatedAt: a.CreatedAt,
	}
}

func (m *UserMapper) ActivityToModel(a *entity.UserActivity) *model.UserActivity {
	if a == nil {
		return nil
	}
	return &model.UserActivity{
		Id:        a.Id,
		UserId:    a.UserId,
		Action:    a.Action,
		ProductId: a.ProductId,
		Metadata:  mapToJSON(a.Metadata),
		CreatedAt: a.CreatedAt,
	}
}

func (m *UserMapper) ActivitiesToEntities(models []*model.UserActivity) []*entity.UserActivity {
	out := make([]*entity.UserActivity, len(models))
	for i, a := range models {
		out[i] = m.ActivityToEntity(a)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
