package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type UserPreferences struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        string         `gorm:"type:text;not null;uniqueIndex"`
	Categories    pq.StringArray `gorm:"type:text[]"`
	Brands        pq.StringArray `gorm:"type:text[]"`
	PriceMin      *float64       `gorm:"type:numeric(10,2)"`
	PriceMax      *float64       `gorm:"type:numeric(10,2)"`
	Notifications datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}

// UserActivity rows are append-only.
type UserActivity struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    string         `gorm:"type:text;not null;index:idx_user_activities_user_created,priority:1"`
	Action    string         `gorm:"type:varchar(32);not null;index"`
	ProductId *uuid.UUID     `gorm:"type:uuid"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index:idx_user_activities_user_created,priority:2,sort:desc"`
}

func (UserActivity) TableName() string {
	return "user_activities"
}
