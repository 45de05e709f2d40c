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
	"gorm.io/gorm/clause"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserRepositoryImpl) FindPreferences(ctx context.Context, userId string) (*entity.UserPreferences, error) {
	var m model.UserPreferences
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PreferencesToEntity(&m), nil
}

func (r *UserRepositoryImpl) UpsertPreferences(ctx context.Context, prefs *entity.UserPreferences) error {
	m := r.mapper.PreferencesToModel(prefs)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"categories", "brands", "price_min", "price_max", "notifications", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}

	// On conflict the row keeps the id and created_at it was inserted with.
	stored, err := r.FindPreferences(ctx, prefs.UserId)
	if err != nil {
		return err
	}
	if stored == nil {
		return contract.ErrRecordNotFound
	}
	*prefs = *stored
	return nil
}

func (r *UserRepositoryImpl) CreateActivity(ctx context.Context, activity *entity.UserActivity) error {
	m := r.mapper.ActivityToModel(activity)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*activity = *r.mapper.ActivityToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) FindActivities(ctx context.Context, specs ...specification.Specification) ([]*entity.UserActivity, error) {
	var models []*model.UserActivity
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ActivitiesToEntities(models), nil
}

func (r *UserRepositoryImpl) CountActivities(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.UserActivity{}), specs...)
	err := query.Count(&count).Error
	return count, err
}
