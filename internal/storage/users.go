package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"voyago/backend/internal/models"
)

// CreateUser inserts a new user row.
func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Create(user).Error
}

// GetUserByID loads a user by id. A missing row returns (nil, nil).
func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail loads a user by email. A missing row returns (nil, nil).
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser saves the full user row.
func (s *Service) UpdateUser(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Save(user).Error
}

// ConfirmUserEmail marks the account's email address as verified.
func (s *Service) ConfirmUserEmail(ctx context.Context, userID string) error {
	return s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("email_confirmed", true).Error
}

// SetUserRole updates only the role column.
func (s *Service) SetUserRole(ctx context.Context, userID, role string) error {
	return s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", role).Error
}

// ListAdvisors returns every user with the advisor role.
func (s *Service) ListAdvisors(ctx context.Context) ([]models.User, error) {
	var advisors []models.User
	err := s.DB.WithContext(ctx).
		Where("role = ?", models.RoleAdvisor).
		Order("created_at asc").
		Find(&advisors).Error
	if err != nil {
		return nil, err
	}
	return advisors, nil
}

// CountConversationsForUser counts the distinct conversations the user has
// sent or received messages in. Used by advisor assignment to pick the
// least-loaded advisor.
func (s *Service) CountConversationsForUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("is_deleted = ?", false).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Distinct("conversation_id").
		Count(&count).Error
	return count, err
}
