package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"voyago/backend/internal/questionnaire"
)

type createQuestionnaireInput struct {
	Title string `json:"title" binding:"required"`
}

// CreateQuestionnaire starts a new draft.
func (h *Handler) CreateQuestionnaire(c *gin.Context) {
	var input createQuestionnaireInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := h.Questionnaires.CreateDraft(c.Request.Context(), input.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"questionnaire": q})
}

// ListQuestionnaires returns every questionnaire, newest first.
func (h *Handler) ListQuestionnaires(c *gin.Context) {
	qs, err := h.Questionnaires.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"questionnaires": qs})
}

// GetQuestionnaire loads one questionnaire with ordered questions.
func (h *Handler) GetQuestionnaire(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}
	q, err := h.Questionnaires.Get(c.Request.Context(), id)
	if err != nil {
		h.questionnaireError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questionnaire": q})
}

// PreviewQuestionnaire renders the builder's live preview.
func (h *Handler) PreviewQuestionnaire(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}
	preview, err := h.Questionnaires.Preview(c.Request.Context(), id)
	if err != nil {
		h.questionnaireError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preview": preview})
}

// UpsertQuestion adds or edits a draft question.
func (h *Handler) UpsertQuestion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}
	var input questionnaire.QuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	question, err := h.Questionnaires.UpsertQuestion(c.Request.Context(), id, input)
	if err != nil {
		h.questionnaireError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion removes a draft question.
func (h *Handler) DeleteQuestion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}
	questionID, err := parseUintParam(c, "questionID")
	if err != nil {
		return
	}
	if err := h.Questionnaires.RemoveQuestion(c.Request.Context(), id, questionID); err != nil {
		h.questionnaireError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type reorderInput struct {
	QuestionIDs []uint `json:"questionIDs" binding:"required"`
}

// ReorderQuestions rewrites draft question positions.
func (h *Handler) ReorderQuestions(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}
	var input reorderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Questionnaires.Reorder(c.Request.Context(), id, input.QuestionIDs); err != nil {
		h.questionnaireError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reordered": true})
}

// PublishQuestionnaire freezes the draft under a bumped version.
func (h *Handler) PublishQuestionnaire(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}
	q, err := h.Questionnaires.Publish(c.Request.Context(), id)
	if err != nil {
		h.questionnaireError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questionnaire": q})
}

type submitInput struct {
	Answers map[uint]string `json:"answers" binding:"required"`
}

// SubmitQuestionnaire records a traveler's answers against the published
// version and alerts advisors.
func (h *Handler) SubmitQuestionnaire(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}
	var input submitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetString("user_id")
	resp, err := h.Questionnaires.SubmitResponse(ctx, id, userID, input.Answers)
	if err != nil {
		h.questionnaireError(c, err)
		return
	}

	if q, qErr := h.Questionnaires.Get(ctx, id); qErr == nil {
		if user, uErr := h.Store.GetUserByID(ctx, userID); uErr == nil && user != nil {
			h.Notifier.QuestionnaireSubmitted(user.DisplayName, q.Title)
		}
	}
	c.JSON(http.StatusCreated, gin.H{"response": resp})
}

func (h *Handler) questionnaireError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, questionnaire.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Questionnaire not found"})
	case errors.Is(err, questionnaire.ErrNotDraft),
		errors.Is(err, questionnaire.ErrNotPublished),
		errors.Is(err, questionnaire.ErrTooLarge):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
