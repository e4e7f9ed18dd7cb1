package questionnaire

import (
	"context"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"voyago/backend/internal/models"
)

// memStore is an in-memory Store mirroring the persistence semantics:
// ordered preloads, versioned publish, position rewrites.
type memStore struct {
	questionnaires map[uint]*models.Questionnaire
	questions      map[uint]*models.Question
	responses      []models.QuestionnaireResponse
	nextID         uint
}

func newMemStore() *memStore {
	return &memStore{
		questionnaires: make(map[uint]*models.Questionnaire),
		questions:      make(map[uint]*models.Question),
		nextID:         1,
	}
}

func (s *memStore) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *memStore) CreateQuestionnaire(ctx context.Context, q *models.Questionnaire) error {
	q.ID = s.id()
	stored := *q
	s.questionnaires[q.ID] = &stored
	return nil
}

func (s *memStore) GetQuestionnaire(ctx context.Context, id uint) (*models.Questionnaire, error) {
	stored, ok := s.questionnaires[id]
	if !ok {
		return nil, nil
	}
	out := *stored
	out.Questions = nil
	for _, question := range s.questions {
		if question.QuestionnaireID == id {
			out.Questions = append(out.Questions, *question)
		}
	}
	sort.Slice(out.Questions, func(i, j int) bool {
		return out.Questions[i].Position < out.Questions[j].Position
	})
	return &out, nil
}

func (s *memStore) ListQuestionnaires(ctx context.Context) ([]models.Questionnaire, error) {
	out := make([]models.Questionnaire, 0, len(s.questionnaires))
	for _, q := range s.questionnaires {
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) SaveQuestion(ctx context.Context, question *models.Question) error {
	if question.ID == 0 {
		question.ID = s.id()
	}
	stored := *question
	s.questions[question.ID] = &stored
	return nil
}

func (s *memStore) DeleteQuestion(ctx context.Context, questionnaireID, questionID uint) error {
	if q, ok := s.questions[questionID]; ok && q.QuestionnaireID == questionnaireID {
		delete(s.questions, questionID)
	}
	return nil
}

func (s *memStore) ReorderQuestions(ctx context.Context, questionnaireID uint, orderedIDs []uint) error {
	for position, id := range orderedIDs {
		if q, ok := s.questions[id]; ok && q.QuestionnaireID == questionnaireID {
			q.Position = position
		}
	}
	return nil
}

func (s *memStore) PublishQuestionnaire(ctx context.Context, id uint) (*models.Questionnaire, error) {
	q, ok := s.questionnaires[id]
	if !ok {
		return nil, nil
	}
	q.Status = models.QuestionnairePublished
	q.Version++
	return s.GetQuestionnaire(ctx, id)
}

func (s *memStore) CreateResponse(ctx context.Context, resp *models.QuestionnaireResponse) error {
	resp.ID = s.id()
	s.responses = append(s.responses, *resp)
	return nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	return NewService(store, zerolog.Nop()), store
}

func TestUpsertQuestion_AppendsInOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	draft, err := svc.CreateDraft(ctx, "Trip intake")
	assert.NoError(t, err)

	first, err := svc.UpsertQuestion(ctx, draft.ID, QuestionInput{Prompt: "Where to?", Type: "text"})
	assert.NoError(t, err)
	second, err := svc.UpsertQuestion(ctx, draft.ID, QuestionInput{
		Prompt:  "Travel style?",
		Type:    "choice",
		Options: []string{"relaxed", "packed"},
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)
}

func TestUpsertQuestion_EditKeepsPosition(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	draft, _ := svc.CreateDraft(ctx, "Trip intake")
	first, err := svc.UpsertQuestion(ctx, draft.ID, QuestionInput{Prompt: "Where to?", Type: "text"})
	assert.NoError(t, err)
	_, err = svc.UpsertQuestion(ctx, draft.ID, QuestionInput{Prompt: "When?", Type: "text"})
	assert.NoError(t, err)

	edited, err := svc.UpsertQuestion(ctx, draft.ID, QuestionInput{
		ID:     first.ID,
		Prompt: "Where would you like to go?",
		Type:   "text",
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, edited.Position)
}

func TestUpsertQuestion_ValidatesInput(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	draft, _ := svc.CreateDraft(ctx, "Trip intake")

	_, err := svc.UpsertQuestion(ctx, draft.ID, QuestionInput{Prompt: "", Type: "text"})
	assert.Error(t, err)

	_, err = svc.UpsertQuestion(ctx, draft.ID, QuestionInput{Prompt: "Pick one", Type: "dropdown"})
	assert.Error(t, err)

	// Choice questions must carry options.
	_, err = svc.UpsertQuestion(ctx, draft.ID, QuestionInput{Prompt: "Pick one", Type: "choice"})
	assert.Error(t, err)
}

func TestPublishedQuestionnaireRejectsEdits(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	draft, _ := svc.CreateDraft(ctx, "Trip intake")
	q, err := svc.UpsertQuestion(ctx, draft.ID, QuestionInput{Prompt: "Where to?", Type: "text"})
	assert.NoError(t, err)

	published, err := svc.Publish(ctx, draft.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.QuestionnairePublished, published.Status)
	assert.Equal(t, 1, published.Version)

	_, err = svc.UpsertQuestion(ctx, draft.ID, QuestionInput{Prompt: "Another", Type: "text"})
	assert.ErrorIs(t, err, ErrNotDraft)
	assert.ErrorIs(t, svc.RemoveQuestion(ctx, draft.ID, q.ID), ErrNotDraft)
	assert.ErrorIs(t, svc.Reorder(ctx, draft.ID, []uint{q.ID}), ErrNotDraft)
}

func TestReorder_RewritesPositions(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	draft, _ := svc.CreateDraft(ctx, "Trip intake")
	a, _ := svc.UpsertQuestion(ctx, draft.ID, QuestionInput{Prompt: "A", Type: "text"})
	b, _ := svc.UpsertQuestion(ctx, draft.ID, QuestionInput{Prompt: "B", Type: "text"})

	assert.NoError(t, svc.Reorder(ctx, draft.ID, []uint{b.ID, a.ID}))

	preview, err := svc.Preview(ctx, draft.ID)
	assert.NoError(t, err)
	assert.Equal(t, "B", preview[0].Prompt)
	assert.Equal(t, "A", preview[1].Prompt)
}

func TestPreview_DecodesOptions(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	draft, _ := svc.CreateDraft(ctx, "Trip intake")
	_, err := svc.UpsertQuestion(ctx, draft.ID, QuestionInput{
		Prompt:  "Travel style?",
		Type:    "multi",
		Options: []string{"beach", "city", "hiking"},
	})
	assert.NoError(t, err)

	preview, err := svc.Preview(ctx, draft.ID)
	assert.NoError(t, err)
	assert.Len(t, preview, 1)
	assert.Equal(t, []string{"beach", "city", "hiking"}, preview[0].Options)
}

func TestSubmitResponse_RequiresPublishedAndAnswers(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	draft, _ := svc.CreateDraft(ctx, "Trip intake")
	required, err := svc.UpsertQuestion(ctx, draft.ID, QuestionInput{Prompt: "Where to?", Type: "text", Required: true})
	assert.NoError(t, err)

	_, err = svc.SubmitResponse(ctx, draft.ID, "u1", map[uint]string{required.ID: "Lisbon"})
	assert.ErrorIs(t, err, ErrNotPublished)

	_, err = svc.Publish(ctx, draft.ID)
	assert.NoError(t, err)

	_, err = svc.SubmitResponse(ctx, draft.ID, "u1", map[uint]string{})
	assert.Error(t, err)

	resp, err := svc.SubmitResponse(ctx, draft.ID, "u1", map[uint]string{required.ID: "Lisbon"})
	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Version)
	assert.Len(t, store.responses, 1)
}

func TestGet_UnknownQuestionnaire(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
