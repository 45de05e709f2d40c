package implementation

import (
	"context"
	"errors"
	"fmt"

	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/mapper"
	"ai-shopping-assistant-be/internal/model"
	"ai-shopping-assistant-be/internal/repository/contract"
	"ai-shopping-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// SQLSTATE codes raised when pgvector is not installed.
const (
	pgUndefinedFunction = "42883"
	pgUndefinedObject   = "42704"
)

type ProductRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProductMapper
}

func NewProductRepository(db *gorm.DB) contract.ProductRepository {
	return &ProductRepositoryImpl{
		db:     db,
		mapper: mapper.NewProductMapper(),
	}
}

func (r *ProductRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ProductRepositoryImpl) Create(ctx context.Context, product *entity.Product) error {
	m := r.mapper.ToModel(product)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*product = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProductRepositoryImpl) Update(ctx context.Context, product *entity.Product) error {
	m := r.mapper.ToModel(product)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*product = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProductRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

func (r *ProductRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error) {
	var m model.Product
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProductRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error) {
	var models []*model.Product
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ProductRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Product{}), specs...)
	err := query.Count(&count).Error
	return count, err
}

func (r *ProductRepositoryImpl) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Update("embedding", pgvector.NewVector(embedding))
	if res.Error != nil {
		return translateVectorError(res.Error)
	}
	if res.RowsAffected == 0 {
		return contract.ErrRecordNotFound
	}
	return nil
}

func (r *ProductRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*contract.ScoredProduct, error) {
	if limit <= 0 {
		return []*contract.ScoredProduct{}, nil
	}

	type result struct {
		model.Product
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("products").
		Select("products.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("products.embedding IS NOT NULL").
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold)
	// Equal similarities fall back to id so repeated searches agree.
	err := r.applySpecifications(query,
		specification.NotDeleted{Table: "products"},
		specification.OrderBy{Field: "similarity", Desc: true},
		specification.OrderBy{Field: "products.id"},
		specification.Pagination{Limit: limit},
	).Scan(&results).Error
	if err != nil {
		return nil, translateVectorError(err)
	}

	scored := make([]*contract.ScoredProduct, len(results))
	for i := range results {
		scored[i] = &contract.ScoredProduct{
			Product:    r.mapper.ToEntity(&results[i].Product),
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}

func (r *ProductRepositoryImpl) CategoryCounts(ctx context.Context) ([]*entity.CategoryCount, error) {
	var rows []*entity.CategoryCount
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Select("category as name, COUNT(*) as count").
		Where("category <> ''").
		Group("category").
		Order("count DESC, name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func translateVectorError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == pgUndefinedFunction || pgErr.Code == pgUndefinedObject) {
		return fmt.Errorf("%w: %s", contract.ErrSemanticSearchUnavailable, pgErr.Message)
	}
	return err
}
