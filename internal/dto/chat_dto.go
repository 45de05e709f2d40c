package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	Message        string                 `json:"message" validate:"max=4000"`
	UserId         string                 `json:"userId" validate:"required,max=255"`
	ConversationId string                 `json:"conversationId" validate:"max=255"`
	Metadata       map[string]interface{} `json:"metadata"`
}

type EntityDTO struct {
	Type       string   `json:"type"`
	Value      string   `json:"value"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type SentimentDTO struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

type AIResponseDTO struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Intent     string        `json:"intent"`
	Entities   []EntityDTO   `json:"entities"`
	Sentiment  *SentimentDTO `json:"sentiment"`
}

// ChatResponse is fully populated even when the turn failed.
type ChatResponse struct {
	Success        bool               `json:"success"`
	Message        string             `json:"message"`
	ConversationId string             `json:"conversationId"`
	AIResponse     AIResponseDTO      `json:"aiResponse"`
	Products       []*ProductResponse `json:"products"`
	Suggestions    []string           `json:"suggestions"`
	Timestamp      time.Time          `json:"timestamp"`
	Degradations   []DegradationDTO   `json:"degradations,omitempty"`
}

type DegradationDTO struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type ConversationResponse struct {
	Id             uuid.UUID              `json:"id"`
	UserId         string                 `json:"userId"`
	ConversationId uuid.UUID              `json:"conversationId"`
	UserMessage    string                 `json:"userMessage"`
	AiResponse     string                 `json:"aiResponse"`
	Products       []*ProductResponse     `json:"products"`
	Timestamp      time.Time              `json:"timestamp"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

type CreateConversationRequest struct {
	UserId string `json:"userId" validate:"required,max=255"`
	Title  string `json:"title" validate:"max=255"`
}

type UpdateConversationTitleRequest struct {
	Id     uuid.UUID `json:"id" validate:"required"`
	UserId string    `json:"userId" validate:"required,max=255"`
	Title  string    `json:"title" validate:"required,max=255"`
}

type ConversationSessionResponse struct {
	Id        uuid.UUID  `json:"id"`
	UserId    string     `json:"userId"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}
