// Package chatfeed implements the conversation feed: paginated history,
// sends with id-based dedup, the realtime hub, and advisor assignment.
package chatfeed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"voyago/backend/internal/config"
	"voyago/backend/internal/models"
	"voyago/backend/internal/profile"
)

// MessageStore is the slice of the storage layer the feed needs.
type MessageStore interface {
	ListRecentMessages(ctx context.Context, conversationID, userID string, limit int) ([]models.Message, bool, error)
	ListMessagesBefore(ctx context.Context, conversationID, userID string, before time.Time, limit int) ([]models.Message, bool, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	CreateAttachment(ctx context.Context, att *models.Attachment) error
	PublishEvent(ctx context.Context, event models.ChatEvent) error
}

// ProfileResolver resolves sender ids to display profiles.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID string) (*profile.Profile, error)
}

// DisplayMessage is the converted, render-ready shape of a message row.
type DisplayMessage struct {
	ID           string                  `json:"id"`
	SenderID     string                  `json:"senderID"`
	SenderName   string                  `json:"senderName"`
	SenderRole   string                  `json:"senderRole"` // "advisor" or "client"
	SenderAvatar string                  `json:"senderAvatar"`
	Type         string                  `json:"type"`
	Text         string                  `json:"text"`
	Metadata     *models.MessageMetadata `json:"metadata,omitempty"`
	Timestamp    time.Time               `json:"timestamp"`
}

// ErrEmptyMessage is returned for sends whose trimmed content is empty.
var ErrEmptyMessage = errors.New("message content is empty")

// ErrNoSender is returned for sends without an authenticated user.
var ErrNoSender = errors.New("no authenticated sender")

// Service carries the stateless feed operations shared by the REST
// handlers, the WebSocket hub, and per-session sync views.
type Service struct {
	store    MessageStore
	profiles ProfileResolver
	log      zerolog.Logger
	pageSize int
}

func NewService(store MessageStore, profiles ProfileResolver, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		profiles: profiles,
		log:      log,
		pageSize: config.DefaultPageSize,
	}
}

// PageSize returns the feed's page size.
func (s *Service) PageSize() int { return s.pageSize }

// History fetches the most recent page for a conversation (or the user's
// whole inbox when conversationID is empty), oldest first. It also returns
// whether more pages exist and the oldest raw timestamp as the pagination
// cursor. An empty result is a valid terminal state.
func (s *Service) History(ctx context.Context, conversationID, userID string) ([]DisplayMessage, bool, *time.Time, error) {
	rows, hasMore, err := s.store.ListRecentMessages(ctx, conversationID, userID, s.pageSize)
	if err != nil {
		return nil, false, nil, err
	}
	return s.pageFromRows(ctx, rows, hasMore)
}

// Older fetches the page strictly before the cursor, oldest first.
func (s *Service) Older(ctx context.Context, conversationID, userID string, before time.Time) ([]DisplayMessage, bool, *time.Time, error) {
	rows, hasMore, err := s.store.ListMessagesBefore(ctx, conversationID, userID, before, s.pageSize)
	if err != nil {
		return nil, false, nil, err
	}
	return s.pageFromRows(ctx, rows, hasMore)
}

// pageFromRows reverses a newest-first page to display order, converts each
// row, and extracts the oldest timestamp as the next cursor. The cursor is
// taken from the raw rows so silently dropped messages still advance it.
func (s *Service) pageFromRows(ctx context.Context, rows []models.Message, hasMore bool) ([]DisplayMessage, bool, *time.Time, error) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	var cursor *time.Time
	if len(rows) > 0 {
		ts := rows[0].Timestamp
		cursor = &ts
	}

	out := make([]DisplayMessage, 0, len(rows))
	for i := range rows {
		if dm := s.Convert(ctx, &rows[i]); dm != nil {
			out = append(out, *dm)
		}
	}
	return out, hasMore, cursor, nil
}

// Send validates, persists, and publishes a message, returning the display
// shape. The conversation id is derived from the (sender, recipient) pair
// when not supplied. Image and document sends with a file URL get a
// best-effort attachment record; its failure does not roll back the message.
func (s *Service) Send(ctx context.Context, senderID string, req models.SendRequest) (*DisplayMessage, error) {
	if senderID == "" {
		return nil, ErrNoSender
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	msgType := req.Type
	if !config.MessageTypes[msgType] {
		msgType = "text"
	}

	conversationID := req.ConversationID
	if conversationID == "" && req.RecipientID != "" {
		conversationID = models.DeriveConversationID(senderID, req.RecipientID)
	}

	id := req.MessageID
	if id == "" {
		id = ulid.Make().String()
	}

	msg := models.Message{
		ID:             id,
		SenderID:       senderID,
		RecipientID:    req.RecipientID,
		ConversationID: conversationID,
		Source:         "app",
		Timestamp:      time.Now().UTC(),
	}
	if err := msg.SetPayload(models.MessagePayload{Type: msgType, Text: text, Metadata: req.Metadata}); err != nil {
		return nil, err
	}

	if err := s.store.CreateMessage(ctx, &msg); err != nil {
		return nil, err
	}

	if (msgType == "image" || msgType == "document") && req.Metadata != nil && req.Metadata.FileURL != "" {
		att := models.Attachment{
			ID:         ulid.Make().String(),
			MessageID:  msg.ID,
			FileURL:    req.Metadata.FileURL,
			FileType:   req.Metadata.FileType,
			UploadedBy: senderID,
		}
		if err := s.store.CreateAttachment(ctx, &att); err != nil {
			s.log.Warn().Err(err).Str("message_id", msg.ID).Msg("attachment record failed")
		}
	}

	if conversationID != "" {
		event := models.ChatEvent{
			MessageID:      msg.ID,
			SenderID:       senderID,
			RecipientID:    req.RecipientID,
			ConversationID: conversationID,
			Content:        msg.Content,
			Type:           msgType,
			Timestamp:      msg.Timestamp,
		}
		if err := s.store.PublishEvent(ctx, event); err != nil {
			s.log.Warn().Err(err).Str("message_id", msg.ID).Msg("realtime publish failed")
		}
	}

	return s.Convert(ctx, &msg), nil
}

// Convert resolves the sender and maps a row to the display shape. Messages
// whose sender is missing or unresolvable are dropped silently: the return
// is nil with no error.
func (s *Service) Convert(ctx context.Context, msg *models.Message) *DisplayMessage {
	if msg.SenderID == "" {
		return nil
	}
	sender, err := s.profiles.Resolve(ctx, msg.SenderID)
	if err != nil {
		s.log.Warn().Err(err).Str("sender_id", msg.SenderID).Msg("sender resolution failed")
		return nil
	}
	if sender == nil {
		return nil
	}

	payload := msg.Payload()
	return &DisplayMessage{
		ID:           msg.ID,
		SenderID:     sender.ID,
		SenderName:   sender.Name,
		SenderRole:   sender.Role,
		SenderAvatar: sender.AvatarURL,
		Type:         payload.Type,
		Text:         payload.Text,
		Metadata:     payload.Metadata,
		Timestamp:    msg.Timestamp,
	}
}
