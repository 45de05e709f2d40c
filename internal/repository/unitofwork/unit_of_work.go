package unitofwork

import (
	"context"

	"ai-shopping-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ProductRepository() contract.ProductRepository
	ConversationRepository() contract.ConversationRepository
	ConversationSessionRepository() contract.ConversationSessionRepository
	UserRepository() contract.UserRepository
}
