package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConversationTurn rows are append-only and read newest first per user.
type ConversationTurn struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId            string         `gorm:"type:text;not null;index:idx_conversations_user_created,priority:1"`
	ConversationId    uuid.UUID      `gorm:"type:uuid;index"`
	UserMessage       string         `gorm:"type:text;not null"`
	AiResponse        string         `gorm:"type:text;not null"`
	ProductsMentioned pq.StringArray `gorm:"type:text[]"`
	Metadata          datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt         time.Time      `gorm:"autoCreateTime;index:idx_conversations_user_created,priority:2,sort:desc"`
}

func (ConversationTurn) TableName() string {
	return "conversations"
}

type ConversationSession struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    string         `gorm:"type:text;not null;index"`
	Title     string         `gorm:"type:text;not null"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ConversationSession) TableName() string {
	return "conversation_sessions"
}
