package contract

import (
	"context"

	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	Create(ctx context.Context, turn *entity.ConversationTurn) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteByUserId(ctx context.Context, userId string) error
	DeleteByConversationId(ctx context.Context, conversationId uuid.UUID, userId string) error
}

type ConversationSessionRepository interface {
	Create(ctx context.Context, session *entity.ConversationSession) error
	Update(ctx context.Context, session *entity.ConversationSession) error
	Delete(ctx context.Context, id uuid.UUID, userId string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationSession, error)
}
