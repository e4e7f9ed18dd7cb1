package models

import "time"

// ChatEvent is the wire shape published to Redis and delivered over
// WebSocket when a message row is inserted.
type ChatEvent struct {
	MessageID      string    `json:"message_id"`
	SenderID       string    `json:"sender_id"`
	RecipientID    string    `json:"recipient_id,omitempty"`
	ConversationID string    `json:"conversation_id"`
	Content        string    `json:"content"`
	Type           string    `json:"type"` // "text", "image", "document", "link", "inspiration", "transcript", "system"
	Timestamp      time.Time `json:"timestamp"`
}

// SendRequest is an inbound send over the WebSocket connection.
type SendRequest struct {
	MessageID      string           `json:"message_id,omitempty"`
	RecipientID    string           `json:"recipient_id,omitempty"`
	ConversationID string           `json:"conversation_id,omitempty"`
	Type           string           `json:"type"`
	Text           string           `json:"text"`
	Metadata       *MessageMetadata `json:"metadata,omitempty"`
}
