package entity

import (
	"time"

	"github.com/google/uuid"
)

// Activity actions accepted by TrackActivity.
const (
	ActionViewProduct = "VIEW_PRODUCT"
	ActionSearch      = "SEARCH"
	ActionAddToCart   = "ADD_TO_CART"
	ActionPurchase    = "PURCHASE"
	ActionLike        = "LIKE"
	ActionShare       = "SHARE"
	ActionChatMessage = "CHAT_MESSAGE"
)

type NotificationSettings struct {
	Email           bool `json:"email"`
	Push            bool `json:"push"`
	Sms             bool `json:"sms"`
	Deals           bool `json:"deals"`
	Recommendations bool `json:"recommendations"`
}

// UserPreferences is keyed by the caller-supplied user id; there is one row
// per user.
type UserPreferences struct {
	Id            uuid.UUID
	UserId        string
	Categories    []string
	Brands        []string
	PriceMin      *float64
	PriceMax      *float64
	Notifications NotificationSettings
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// HasSignal reports whether the preferences can steer recommendations.
func (p *UserPreferences) HasSignal() bool {
	return p != nil && (len(p.Categories) > 0 || len(p.Brands) > 0 || p.PriceMin != nil || p.PriceMax != nil)
}

type UserActivity struct {
	Id        uuid.UUID
	UserId    string
	Action    string
	ProductId *uuid.UUID
	Metadata  map[string]interface{}
	CreatedAt time.Time
}
