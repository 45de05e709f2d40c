package service

import (
	"context"
	"time"

	"ai-shopping-assistant-be/internal/dto"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthCheckTimeout = 2 * time.Second

type IHealthService interface {
	Check(ctx context.Context) *dto.HealthResponse
}

type healthService struct {
	db            *gorm.DB
	rdb           *redis.Client
	llmConfigured bool
	version       string
}

// NewHealthService reports on the given dependencies. A nil db means the
// in-memory catalog is serving, which is always up.
func NewHealthService(db *gorm.DB, rdb *redis.Client, llmConfigured bool, version string) IHealthService {
	return &healthService{
		db:            db,
		rdb:           rdb,
		llmConfigured: llmConfigured,
		version:       version,
	}
}

func (s *healthService) Check(ctx context.Context) *dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	services := dto.ServiceStatus{
		Database: s.pingDatabase(ctx),
		LLM:      s.llmConfigured,
	}
	if s.rdb != nil {
		up := s.rdb.Ping(ctx).Err() == nil
		services.Redis = &up
	}

	status := "OK"
	if !services.Database {
		status = "DEGRADED"
	}

	return &dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Services:  services,
		Version:   s.version,
	}
}

func (s *healthService) pingDatabase(ctx context.Context) bool {
	if s.db == nil {
		return true
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}
