package mapper

import (
	"time"

	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/model"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

// Turn Mappers

func (m *ConversationMapper) TurnToEntity(t *model.ConversationTurn) *entity.ConversationTurn {
	if t == nil {
		return nil
	}
	return &entity.ConversationTurn{
		Id:                t.Id,
		UserId:            t.UserId,
		ConversationId:    t.ConversationId,
		UserMessage:       t.UserMessage,
		AiResponse:        t.AiResponse,
		ProductsMentioned: []string(t.ProductsMentioned),
		Metadata:          jsonToMap(t.Metadata),
		CreatedAt:         t.CreatedAt,
	}
}

func (m *ConversationMapper) TurnToModel(t *entity.ConversationTurn) *model.ConversationTurn {
	if t == nil {
		return nil
	}
	return &model.ConversationTurn{
		Id:                t.Id,
		UserId:            t.UserId,
		ConversationId:    t.ConversationId,
		UserMessage:       t.UserMessage,
		AiResponse:        t.AiResponse,
		ProductsMentioned: pq.StringArray(t.ProductsMentioned),
		Metadata:          mapToJSON(t.Metadata),
		CreatedAt:         t.CreatedAt,
	}
}

// Session Mappers

func (m *ConversationMapper) SessionToEntity(s *model.ConversationSession) *entity.ConversationSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ConversationSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		Metadata:  jsonToMap(s.Metadata),
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: s.DeletedAt.Valid,
	}
}

func (m *ConversationMapper) SessionToModel(s *entity.ConversationSession) *model.ConversationSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ConversationSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		Metadata:  mapToJSON(s.Metadata),
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}
