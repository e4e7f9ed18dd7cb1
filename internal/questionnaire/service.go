// Package questionnaire implements the admin questionnaire builder:
// draft editing, versioned publishing, and the live preview the builder
// screen renders alongside the form.
package questionnaire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"voyago/backend/internal/config"
	"voyago/backend/internal/models"
)

var (
	ErrNotFound     = errors.New("questionnaire not found")
	ErrNotDraft     = errors.New("questionnaire is not a draft")
	ErrNotPublished = errors.New("questionnaire is not published")
	ErrTooLarge     = errors.New("question limit reached")
)

// Store is the slice of the storage layer the builder needs.
type Store interface {
	CreateQuestionnaire(ctx context.Context, q *models.Questionnaire) error
	GetQuestionnaire(ctx context.Context, id uint) (*models.Questionnaire, error)
	ListQuestionnaires(ctx context.Context) ([]models.Questionnaire, error)
	SaveQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, questionnaireID, questionID uint) error
	ReorderQuestions(ctx context.Context, questionnaireID uint, orderedIDs []uint) error
	PublishQuestionnaire(ctx context.Context, id uint) (*models.Questionnaire, error)
	CreateResponse(ctx context.Context, resp *models.QuestionnaireResponse) error
}

// QuestionInput is a builder edit for one question.
type QuestionInput struct {
	ID       uint     `json:"id"`
	Prompt   string   `json:"prompt" validate:"required,min=1,max=500"`
	Type     string   `json:"type" validate:"required,oneof=text choice multi scale"`
	Options  []string `json:"options" validate:"required_if=Type choice,required_if=Type multi,dive,min=1"`
	Required bool     `json:"required"`
}

// Service is the questionnaire builder.
type Service struct {
	store    Store
	validate *validator.Validate
	log      zerolog.Logger
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		validate: validator.New(),
		log:      log,
	}
}

// CreateDraft starts a new empty draft.
func (s *Service) CreateDraft(ctx context.Context, title string) (*models.Questionnaire, error) {
	q := models.Questionnaire{Title: title, Status: models.QuestionnaireDraft}
	if err := s.store.CreateQuestionnaire(ctx, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// List returns all questionnaires.
func (s *Service) List(ctx context.Context) ([]models.Questionnaire, error) {
	return s.store.ListQuestionnaires(ctx)
}

// Get loads one questionnaire with ordered questions.
func (s *Service) Get(ctx context.Context, id uint) (*models.Questionnaire, error) {
	q, err := s.store.GetQuestionnaire(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrNotFound
	}
	return q, nil
}

// UpsertQuestion adds or edits a question on a draft.
func (s *Service) UpsertQuestion(ctx context.Context, questionnaireID uint, input QuestionInput) (*models.Question, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	q, err := s.Get(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	if q.Status != models.QuestionnaireDraft {
		return nil, ErrNotDraft
	}
	if input.ID == 0 && len(q.Questions) >= config.MaxQuestionsPerQuestionnaire {
		return nil, ErrTooLarge
	}

	options, err := json.Marshal(input.Options)
	if err != nil {
		return nil, err
	}

	question := models.Question{
		ID:              input.ID,
		QuestionnaireID: questionnaireID,
		Position:        len(q.Questions),
		Prompt:          input.Prompt,
		Type:            input.Type,
		Options:         string(options),
		Required:        input.Required,
	}
	if input.ID != 0 {
		// Editing keeps the existing position.
		for _, existing := range q.Questions {
			if existing.ID == input.ID {
				question.Position = existing.Position
				break
			}
		}
	}

	if err := s.store.SaveQuestion(ctx, &question); err != nil {
		return nil, err
	}
	return &question, nil
}

// RemoveQuestion deletes a question from a draft.
func (s *Service) RemoveQuestion(ctx context.Context, questionnaireID, questionID uint) error {
	q, err := s.Get(ctx, questionnaireID)
	if err != nil {
		return err
	}
	if q.Status != models.QuestionnaireDraft {
		return ErrNotDraft
	}
	return s.store.DeleteQuestion(ctx, questionnaireID, questionID)
}

// Reorder rewrites question positions from the given id order.
func (s *Service) Reorder(ctx context.Context, questionnaireID uint, orderedIDs []uint) error {
	q, err := s.Get(ctx, questionnaireID)
	if err != nil {
		return err
	}
	if q.Status != models.QuestionnaireDraft {
		return ErrNotDraft
	}
	return s.store.ReorderQuestions(ctx, questionnaireID, orderedIDs)
}

// Publish freezes the draft under a bumped version.
func (s *Service) Publish(ctx context.Context, questionnaireID uint) (*models.Questionnaire, error) {
	if _, err := s.Get(ctx, questionnaireID); err != nil {
		return nil, err
	}
	return s.store.PublishQuestionnaire(ctx, questionnaireID)
}

// PreviewQuestion is the client-facing render of one question.
type PreviewQuestion struct {
	ID       uint     `json:"id"`
	Prompt   string   `json:"prompt"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Required bool     `json:"required"`
}

// Preview renders the current state of a questionnaire to the shape the
// traveler-facing screen consumes. Drafts preview their work in progress.
func (s *Service) Preview(ctx context.Context, questionnaireID uint) ([]PreviewQuestion, error) {
	q, err := s.Get(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}

	preview := make([]PreviewQuestion, 0, len(q.Questions))
	for _, question := range q.Questions {
		var options []string
		if question.Options != "" {
			_ = json.Unmarshal([]byte(question.Options), &options)
		}
		preview = append(preview, PreviewQuestion{
			ID:       question.ID,
			Prompt:   question.Prompt,
			Type:     question.Type,
			Options:  options,
			Required: question.Required,
		})
	}
	return preview, nil
}

// SubmitResponse validates a traveler's answers against the published
// version and records them.
func (s *Service) SubmitResponse(ctx context.Context, questionnaireID uint, userID string, answers map[uint]string) (*models.QuestionnaireResponse, error) {
	q, err := s.Get(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	if q.Status != models.QuestionnairePublished {
		return nil, ErrNotPublished
	}

	for _, question := range q.Questions {
		if question.Required {
			if answers[question.ID] == "" {
				return nil, fmt.Errorf("question %d requires an answer", question.ID)
			}
		}
	}

	encoded, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	resp := models.QuestionnaireResponse{
		QuestionnaireID: questionnaireID,
		Version:         q.Version,
		UserID:          userID,
		Answers:         string(encoded),
	}
	if err := s.store.CreateResponse(ctx, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
