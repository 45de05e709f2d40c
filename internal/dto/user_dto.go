package dto

import (
	"time"

	"github.com/google/uuid"
)

type NotificationPreferences struct {
	Email           bool `json:"email"`
	Push            bool `json:"push"`
	Sms             bool `json:"sms"`
	Deals           bool `json:"deals"`
	Recommendations bool `json:"recommendations"`
}

// UpdateUserPreferencesRequest merges into the stored row; nil fields keep
// their current value.
type UpdateUserPreferencesRequest struct {
	UserId        string                   `json:"userId" validate:"required,max=255"`
	Categories    []string                 `json:"categories" validate:"omitempty,max=50,dive,max=100"`
	PriceRange    *PriceRange              `json:"priceRange"`
	Brands        []string                 `json:"brands" validate:"omitempty,max=50,dive,max=100"`
	Notifications *NotificationPreferences `json:"notifications"`
}

type UserPreferencesResponse struct {
	Id            uuid.UUID               `json:"id"`
	UserId        string                  `json:"userId"`
	Categories    []string                `json:"categories"`
	PriceRange    *PriceRange             `json:"priceRange,omitempty"`
	Brands        []string                `json:"brands"`
	Notifications NotificationPreferences `json:"notifications"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

type TrackUserActivityRequest struct {
	UserId    string                 `json:"userId" validate:"required,max=255"`
	Action    string                 `json:"action" validate:"required,oneof=VIEW_PRODUCT SEARCH ADD_TO_CART PURCHASE LIKE SHARE CHAT_MESSAGE"`
	ProductId string                 `json:"productId" validate:"omitempty,uuid"`
	Metadata  map[string]interface{} `json:"metadata"`
}

type UserActivitySummary struct {
	TotalSearches      int64    `json:"totalSearches"`
	TotalViews         int64    `json:"totalViews"`
	TotalPurchases     int64    `json:"totalPurchases"`
	FavoriteCategories []string `json:"favoriteCategories"`
	LastSearches       []string `json:"lastSearches"`
}

type UserProfileResponse struct {
	UserId            string                   `json:"userId"`
	Preferences       *UserPreferencesResponse `json:"preferences"`
	ActivitySummary   UserActivitySummary      `json:"activitySummary"`
	ConversationCount int64                    `json:"conversationCount"`
	SessionCount      int64                    `json:"sessionCount"`
	CreatedAt         time.Time                `json:"createdAt"`
	LastActive        time.Time                `json:"lastActive"`
}
