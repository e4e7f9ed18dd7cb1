package chatfeed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"voyago/backend/internal/models"
)

// ConversationSync maintains one session's ordered, id-deduplicated view of
// a conversation: initial page, backward pagination, optimistic append on
// send, and realtime merge. The id guard is the only defense against the
// optimistic-echo and realtime-delivery paths racing each other.
type ConversationSync struct {
	svc            *Service
	userID         string
	conversationID string

	mu       sync.Mutex
	messages []DisplayMessage
	seen     map[string]bool
	cursor   *time.Time
	hasMore  bool
	loading  bool
}

// NewConversationSync builds an idle view for a user. An empty
// conversationID means the user's whole inbox (any message they sent or
// received).
func NewConversationSync(svc *Service, userID, conversationID string) *ConversationSync {
	return &ConversationSync{
		svc:            svc,
		userID:         userID,
		conversationID: conversationID,
		seen:           make(map[string]bool),
	}
}

// Load fetches the most recent page and replaces the view with it, oldest
// first. The oldest retrieved timestamp becomes the pagination cursor.
func (c *ConversationSync) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.mu.Unlock()

	page, hasMore, cursor, err := c.svc.History(ctx, c.conversationID, c.userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		return err
	}

	c.messages = nil
	c.seen = make(map[string]bool)
	for _, m := range page {
		if !c.seen[m.ID] {
			c.seen[m.ID] = true
			c.messages = append(c.messages, m)
		}
	}
	c.cursor = cursor
	c.hasMore = hasMore
	return nil
}

// LoadOlder prepends the page strictly before the cursor and advances the
// cursor. It no-ops, returning false, when there is no cursor, a load is
// already in flight, or there is no user.
func (c *ConversationSync) LoadOlder(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.cursor == nil || c.loading || c.userID == "" {
		c.mu.Unlock()
		return false, nil
	}
	c.loading = true
	before := *c.cursor
	c.mu.Unlock()

	page, hasMore, cursor, err := c.svc.Older(ctx, c.conversationID, c.userID, before)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		return false, err
	}

	prepend := make([]DisplayMessage, 0, len(page))
	for _, m := range page {
		if !c.seen[m.ID] {
			c.seen[m.ID] = true
			prepend = append(prepend, m)
		}
	}
	c.messages = append(prepend, c.messages...)
	if cursor != nil {
		c.cursor = cursor
	}
	c.hasMore = hasMore
	return true, nil
}

// Send writes the message and optimistically appends it to the view. It
// reports success with a boolean and never propagates an error to the
// caller; failures are logged and surface as false. The appended display
// message is returned so transports can deliver it to the session.
func (c *ConversationSync) Send(ctx context.Context, req models.SendRequest) (*DisplayMessage, bool) {
	if req.ConversationID == "" {
		req.ConversationID = c.conversationID
	}
	dm, err := c.svc.Send(ctx, c.userID, req)
	if err != nil {
		c.svc.log.Warn().Err(err).Str("user_id", c.userID).Msg("send failed")
		return nil, false
	}
	if dm == nil {
		return nil, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seen[dm.ID] {
		c.seen[dm.ID] = true
		c.messages = append(c.messages, *dm)
	}
	return dm, true
}

// ApplyEvent merges a realtime insert notification and returns the appended
// display message, or nil when the event was filtered or already present.
// The id guard alone absorbs the optimistic echo of this session's own
// sends, while events from the same user's other sessions still land.
func (c *ConversationSync) ApplyEvent(ctx context.Context, event models.ChatEvent) *DisplayMessage {
	if c.conversationID != "" && event.ConversationID != c.conversationID {
		return nil
	}

	row := messageFromEvent(event)
	dm := c.svc.Convert(ctx, &row)
	if dm == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[dm.ID] {
		return nil
	}
	c.seen[dm.ID] = true
	c.messages = append(c.messages, *dm)
	return dm
}

// Messages returns a copy of the current view, oldest first.
func (c *ConversationSync) Messages() []DisplayMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]DisplayMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// HasMore reports whether older pages exist beyond the cursor.
func (c *ConversationSync) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

func messageFromEvent(event models.ChatEvent) models.Message {
	msg := models.Message{
		ID:             event.MessageID,
		SenderID:       event.SenderID,
		RecipientID:    event.RecipientID,
		ConversationID: event.ConversationID,
		Content:        event.Content,
		MessageType:    event.Type,
		Timestamp:      event.Timestamp,
	}
	// Events may carry a bare text payload rather than the JSON column.
	var p models.MessagePayload
	if json.Unmarshal([]byte(event.Content), &p) != nil || p.Type == "" {
		msg.Text = event.Content
	}
	return msg
}
