// Package storage owns the PostgreSQL schema and the Redis keyspace used by
// the application: users, messages, attachments, wishlists, trip elements,
// questionnaires, plus the pub/sub channels that feed the realtime hub.
package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"voyago/backend/internal/models"
)

// Service is the concrete storage layer over PostgreSQL and Redis.
// Consumers declare the narrow interface they need and accept a *Service.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewService constructs the storage service.
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{DB: db, Redis: rdb}
}

// Migrate creates or updates all tables.
func (s *Service) Migrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.Attachment{},
		&models.TripElement{},
		&models.Wishlist{},
		&models.WishlistItem{},
		&models.Questionnaire{},
		&models.Question{},
		&models.QuestionnaireResponse{},
	)
}

// Ping verifies both backing stores are reachable.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	return s.Redis.Ping(ctx).Err()
}
