package config

import "time"

const (
	// Chat pagination
	DefaultPageSize = 5
	MaxPageSize     = 100

	// Profile cache
	ProfileCacheTTL = 10 * time.Minute

	// Typing indicators
	TypingTTL = 5 * time.Second

	// Sessions
	AccessTokenTTL    = 72 * time.Hour
	RememberTokenTTL  = 30 * 24 * time.Hour
	MaxRememberTokens = 5
	EmailConfirmTTL   = 48 * time.Hour

	// Questionnaires
	MaxQuestionsPerQuestionnaire = 50
)

// MessageTypes lists the payload discriminators a message may carry.
var MessageTypes = map[string]bool{
	"text":        true,
	"image":       true,
	"document":    true,
	"link":        true,
	"inspiration": true,
	"transcript":  true,
}
