package history

import (
	"context"
	"fmt"

	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/repository/specification"
	"ai-shopping-assistant-be/internal/repository/unitofwork"
)

const logModule = "ConversationStore"

// DefaultWindow is the number of prior turns fed back to the model.
const DefaultWindow = 5

// MaxProductsMentioned bounds the product ids persisted with a turn.
const MaxProductsMentioned = 3

// Store is the per-user sliding window over persisted conversation turns
type Store struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewStore(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *Store {
	return &Store{
		uowFactory: uowFactory,
		logger:     log,
	}
}

// FetchRecent returns at most n turns for userId, most recent first.
func (s *Store) FetchRecent(ctx context.Context, userId string, n int) ([]*entity.ConversationTurn, error) {
	if n <= 0 {
		n = DefaultWindow
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	turns, err := uow.ConversationRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: n},
	)
	if err != nil {
		return nil, fmt.Errorf("fetch conversation history: %w", err)
	}
	return turns, nil
}

// Append persists one turn. ProductsMentioned is truncated to
// MaxProductsMentioned ids.
func (s *Store) Append(ctx context.Context, turn *entity.ConversationTurn) error {
	if len(turn.ProductsMentioned) > MaxProductsMentioned {
		turn.ProductsMentioned = turn.ProductsMentioned[:MaxProductsMentioned]
	}
	if turn.ProductsMentioned == nil {
		turn.ProductsMentioned = []string{}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ConversationRepository().Create(ctx, turn); err != nil {
		return fmt.Errorf("append conversation turn: %w", err)
	}

	s.logger.Debug(logModule, "Conversation turn saved", map[string]interface{}{
		"user_id":            turn.UserId,
		"conversation_id":    turn.ConversationId.String(),
		"products_mentioned": len(turn.ProductsMentioned),
	})
	return nil
}
