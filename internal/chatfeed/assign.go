package chatfeed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"voyago/backend/internal/models"
)

// ErrNoAdvisors is returned when assignment is requested and no advisor
// accounts exist. There is deliberately no self-chat fallback.
var ErrNoAdvisors = errors.New("no advisors available")

// AdvisorStore is the slice of the storage layer the assigner needs.
type AdvisorStore interface {
	ListAdvisors(ctx context.Context) ([]models.User, error)
	CountConversationsForUser(ctx context.Context, userID string) (int64, error)
}

// Assigner pairs a traveler with an advisor and opens their conversation.
type Assigner struct {
	users AdvisorStore
	svc   *Service
	log   zerolog.Logger
}

func NewAssigner(users AdvisorStore, svc *Service, log zerolog.Logger) *Assigner {
	return &Assigner{users: users, svc: svc, log: log}
}

// Assignment is the result of pairing a traveler with an advisor.
type Assignment struct {
	ConversationID string       `json:"conversationID"`
	Advisor        *models.User `json:"advisor"`
}

// Assign picks the advisor with the fewest conversations and resolves the
// deterministic conversation id for the pair. Repeated calls for the same
// pair land on the same conversation.
func (a *Assigner) Assign(ctx context.Context, travelerID string) (*Assignment, error) {
	advisors, err := a.users.ListAdvisors(ctx)
	if err != nil {
		return nil, err
	}
	if len(advisors) == 0 {
		return nil, ErrNoAdvisors
	}

	var chosen *models.User
	var chosenLoad int64
	for i := range advisors {
		load, err := a.users.CountConversationsForUser(ctx, advisors[i].ID)
		if err != nil {
			return nil, err
		}
		if chosen == nil || load < chosenLoad {
			chosen = &advisors[i]
			chosenLoad = load
		}
	}

	conversationID := models.DeriveConversationID(travelerID, chosen.ID)

	// Ephemeral system event so any open connections learn about the pairing.
	event := models.ChatEvent{
		SenderID:       "system",
		ConversationID: conversationID,
		Content:        "advisor_assigned",
		Type:           "system",
		Timestamp:      time.Now().UTC(),
	}
	if err := a.svc.store.PublishEvent(ctx, event); err != nil {
		a.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("assignment event publish failed")
	}

	a.log.Info().
		Str("traveler_id", travelerID).
		Str("advisor_id", chosen.ID).
		Str("conversation_id", conversationID).
		Msg("advisor assigned")

	return &Assignment{ConversationID: conversationID, Advisor: chosen}, nil
}
