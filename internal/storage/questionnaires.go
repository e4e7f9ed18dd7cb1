package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"voyago/backend/internal/models"
)

// CreateQuestionnaire inserts a new draft.
func (s *Service) CreateQuestionnaire(ctx context.Context, q *models.Questionnaire) error {
	return s.DB.WithContext(ctx).Create(q).Error
}

// GetQuestionnaire loads a questionnaire with its questions in order.
// A missing row returns (nil, nil).
func (s *Service) GetQuestionnaire(ctx context.Context, id uint) (*models.Questionnaire, error) {
	var q models.Questionnaire
	err := s.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		First(&q, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuestionnaires returns all questionnaires, newest first.
func (s *Service) ListQuestionnaires(ctx context.Context) ([]models.Questionnaire, error) {
	var qs []models.Questionnaire
	if err := s.DB.WithContext(ctx).Order("created_at desc").Find(&qs).Error; err != nil {
		return nil, err
	}
	return qs, nil
}

// SaveQuestion inserts or updates one question.
func (s *Service) SaveQuestion(ctx context.Context, question *models.Question) error {
	return s.DB.WithContext(ctx).Save(question).Error
}

// DeleteQuestion removes a question from a draft.
func (s *Service) DeleteQuestion(ctx context.Context, questionnaireID, questionID uint) error {
	return s.DB.WithContext(ctx).
		Where("id = ? AND questionnaire_id = ?", questionID, questionnaireID).
		Delete(&models.Question{}).Error
}

// ReorderQuestions rewrites question positions in one transaction; ids are
// given in their new order.
func (s *Service) ReorderQuestions(ctx context.Context, questionnaireID uint, orderedIDs []uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for pos, id := range orderedIDs {
			err := tx.Model(&models.Question{}).
				Where("id = ? AND questionnaire_id = ?", id, questionnaireID).
				Update("position", pos).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// PublishQuestionnaire bumps the version and flips the status to published.
func (s *Service) PublishQuestionnaire(ctx context.Context, id uint) (*models.Questionnaire, error) {
	err := s.DB.WithContext(ctx).Model(&models.Questionnaire{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  models.QuestionnairePublished,
			"version": gorm.Expr("version + 1"),
		}).Error
	if err != nil {
		return nil, err
	}
	return s.GetQuestionnaire(ctx, id)
}

// CreateResponse records a traveler's submission.
func (s *Service) CreateResponse(ctx context.Context, resp *models.QuestionnaireResponse) error {
	return s.DB.WithContext(ctx).Create(resp).Error
}
