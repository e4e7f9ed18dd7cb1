package models

import "time"

const (
	QuestionnaireDraft     = "draft"
	QuestionnairePublished = "published"
)

// Questionnaire is built by admins and answered by travelers. Publishing
// freezes the current question set under a bumped version; drafts keep
// evolving underneath.
type Questionnaire struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	Status  string `gorm:"type:text;not null;default:'draft';index" json:"status"`
	Version int    `gorm:"not null;default:0" json:"version"`

	Questions []Question `gorm:"foreignKey:QuestionnaireID" json:"questions"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Question is one ordered entry in a questionnaire. Options apply to choice
// and multi types and are stored as a Postgres text array upstream of the
// builder's validation.
type Question struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	QuestionnaireID uint   `gorm:"not null;index" json:"questionnaireID"`
	Position        int    `gorm:"not null" json:"position"`
	Prompt          string `gorm:"not null" json:"prompt"`
	Type            string `gorm:"type:text;not null" json:"type"` // text | choice | multi | scale
	Options         string `gorm:"type:text" json:"options"`       // JSON array for choice/multi
	Required        bool   `gorm:"default:false" json:"required"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// QuestionnaireResponse records a traveler's answers against a published
// version.
type QuestionnaireResponse struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	QuestionnaireID uint   `gorm:"not null;index:idx_resp_user" json:"questionnaireID"`
	Version         int    `gorm:"not null" json:"version"`
	UserID          string `gorm:"type:text;not null;index:idx_resp_user" json:"userID"`
	Answers         string `gorm:"type:text;not null" json:"answers"` // JSON: question id -> answer

	CreatedAt time.Time `json:"createdAt"`
}
