package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// ByIDs matches nothing when IDs is empty.
type ByIDs struct {
	IDs []uuid.UUID
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN ?", s.IDs)
}

// OrderBy sorts on a trusted column name; Field is never user input.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	if s.Desc {
		return db.Order(fmt.Sprintf("%s DESC", s.Field))
	}
	return db.Order(fmt.Sprintf("%s ASC", s.Field))
}

// NotDeleted excludes soft-deleted rows on raw Table() queries, where gorm's
// DeletedAt scope does not apply. Table qualifies the column when set.
type NotDeleted struct {
	Table string
}

func (s NotDeleted) Apply(db *gorm.DB) *gorm.DB {
	if s.Table != "" {
		return db.Where(fmt.Sprintf("%s.deleted_at IS NULL", s.Table))
	}
	return db.Where("deleted_at IS NULL")
}

type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}
