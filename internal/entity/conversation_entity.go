package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConversationTurn is one persisted user/assistant exchange.
type ConversationTurn struct {
	Id                uuid.UUID
	UserId            string
	ConversationId    uuid.UUID
	UserMessage       string
	AiResponse        string
	ProductsMentioned []string
	Metadata          map[string]interface{}
	CreatedAt         time.Time
}

type ConversationSession struct {
	Id        uuid.UUID
	UserId    string
	Title     string
	Metadata  map[string]interface{}
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
