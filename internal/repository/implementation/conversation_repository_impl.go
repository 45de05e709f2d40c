package implementation

import (
	"context"
	"errors"

	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/mapper"
	"ai-shopping-assistant-be/internal/model"
	"ai-shopping-assistant-be/internal/repository/contract"
	"ai-shopping-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Conversation turns ---

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ConversationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConversationRepositoryImpl) Create(ctx context.Context, turn *entity.ConversationTurn) error {
	m := r.mapper.TurnToModel(turn)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*turn = *r.mapper.TurnToEntity(m)
	return nil
}

func (r *ConversationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error) {
	var models []*model.ConversationTurn
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	turns := make([]*entity.ConversationTurn, len(models))
	for i, m := range models {
		turns[i] = r.mapper.TurnToEntity(m)
	}
	return turns, nil
}

func (r *ConversationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ConversationTurn{}), specs...)
	err := query.Count(&count).Error
	return count, err
}

func (r *ConversationRepositoryImpl) DeleteByUserId(ctx context.Context, userId string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.ConversationTurn{}).Error
}

func (r *ConversationRepositoryImpl) DeleteByConversationId(ctx context.Context, conversationId uuid.UUID, userId string) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationId, userId).
		Delete(&model.ConversationTurn{}).Error
}

// --- Conversation sessions ---

type ConversationSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewConversationSessionRepository(db *gorm.DB) contract.ConversationSessionRepository {
	return &ConversationSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ConversationSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConversationSessionRepositoryImpl) Create(ctx context.Context, session *entity.ConversationSession) error {
	m := r.mapper.SessionToModel(session)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *ConversationSessionRepositoryImpl) Update(ctx context.Context, session *entity.ConversationSession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *ConversationSessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID, userId string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userId).
		Delete(&model.ConversationSession{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrRecordNotFound
	}
	return nil
}

func (r *ConversationSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationSession, error) {
	var m model.ConversationSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *ConversationSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationSession, error) {
	var models []*model.ConversationSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	sessions := make([]*entity.ConversationSession, len(models))
	for i, m := range models {
		sessions[i] = r.mapper.SessionToEntity(m)
	}
	return sessions, nil
}
