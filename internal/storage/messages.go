package storage

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"voyago/backend/internal/models"
)

// messageScope narrows message queries to one conversation, or, when no
// conversation id is given, to anything the user sent or received.
// Soft-deleted rows are filtered out of every read path.
func messageScope(conversationID, userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_deleted = ?", false)
		if conversationID != "" {
			return db.Where("conversation_id = ?", conversationID)
		}
		return db.Where("sender_id = ? OR recipient_id = ?", userID, userID)
	}
}

// ListRecentMessages fetches the most recent messages for the scope,
// newest first. It requests one row beyond the limit so hasMore is exact
// rather than inferred from a full page.
func (s *Service) ListRecentMessages(ctx context.Context, conversationID, userID string, limit int) ([]models.Message, bool, error) {
	var rows []models.Message
	err := s.DB.WithContext(ctx).
		Scopes(messageScope(conversationID, userID)).
		Order("timestamp desc").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, false, err
	}
	rows, hasMore := trimPage(rows, limit)
	return rows, hasMore, nil
}

// ListMessagesBefore fetches messages strictly older than the cursor,
// newest first, with the same one-extra-row has-more accounting.
func (s *Service) ListMessagesBefore(ctx context.Context, conversationID, userID string, before time.Time, limit int) ([]models.Message, bool, error) {
	var rows []models.Message
	err := s.DB.WithContext(ctx).
		Scopes(messageScope(conversationID, userID)).
		Where("timestamp < ?", before).
		Order("timestamp desc").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, false, err
	}
	rows, hasMore := trimPage(rows, limit)
	return rows, hasMore, nil
}

// trimPage drops the extra row fetched beyond the page limit. Its presence
// is the exact has-more signal, replacing the "got a full page, assume
// more" heuristic.
func trimPage(rows []models.Message, limit int) ([]models.Message, bool) {
	if len(rows) > limit {
		return rows[:limit], true
	}
	return rows, false
}

// CreateMessage inserts a message row. Rows are immutable after this point.
func (s *Service) CreateMessage(ctx context.Context, msg *models.Message) error {
	return s.DB.WithContext(ctx).Create(msg).Error
}

// SoftDeleteMessage flags a message as deleted without removing the row.
func (s *Service) SoftDeleteMessage(ctx context.Context, messageID, senderID string) error {
	return s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND sender_id = ?", messageID, senderID).
		Update("is_deleted", true).Error
}

// PurgeDeletedMessages hard-deletes soft-deleted rows older than the cutoff.
// Only the admin CLI calls this.
func (s *Service) PurgeDeletedMessages(ctx context.Context, olderThan time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("is_deleted = ? AND timestamp < ?", true, olderThan).
		Delete(&models.Message{})
	return res.RowsAffected, res.Error
}

// CreateAttachment inserts the secondary attachment record for a file
// message.
func (s *Service) CreateAttachment(ctx context.Context, att *models.Attachment) error {
	return s.DB.WithContext(ctx).Create(att).Error
}

const eventChannelPrefix = "conv:"

// EventChannel names the Redis pub/sub channel for a conversation.
func EventChannel(conversationID string) string {
	return eventChannelPrefix + conversationID
}

// PublishEvent publishes an insert notification to the conversation channel.
func (s *Service) PublishEvent(ctx context.Context, event models.ChatEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, EventChannel(event.ConversationID), payload).Err()
}

// SubscribeEvents subscribes to insert notifications for every conversation.
// The hub filters events down to its connected clients.
func (s *Service) SubscribeEvents(ctx context.Context) <-chan models.ChatEvent {
	pubsub := s.Redis.PSubscribe(ctx, eventChannelPrefix+"*")
	out := make(chan models.ChatEvent)

	go func() {
		defer close(out)
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var event models.ChatEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
