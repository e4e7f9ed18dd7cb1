package models

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
)

// conversationNamespace seeds the deterministic conversation id derivation.
var conversationNamespace = uuid.MustParse("9e336be4-63c5-4f32-9d94-1c2b1f6c7a01")

// DeriveConversationID computes the conversation id for an unordered pair of
// participant ids. Both participants resolve to the same id regardless of
// argument order.
func DeriveConversationID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return uuid.NewSHA1(conversationNamespace, []byte(pair[0]+":"+pair[1])).String()
}

// MessageMetadata carries type-specific payload fields: file details for
// image/document messages, preview fields for link messages.
type MessageMetadata struct {
	FileURL  string `json:"fileURL,omitempty"`
	FileName string `json:"fileName,omitempty"`
	FileType string `json:"fileType,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`

	LinkURL         string `json:"linkURL,omitempty"`
	PreviewTitle    string `json:"previewTitle,omitempty"`
	PreviewSubtitle string `json:"previewSubtitle,omitempty"`
	PreviewImageURL string `json:"previewImageURL,omitempty"`
}

// MessagePayload is the structured content of a message as persisted in the
// content column: a discriminated type, free text, and optional metadata.
type MessagePayload struct {
	Type     string           `json:"type"`
	Text     string           `json:"text"`
	Metadata *MessageMetadata `json:"metadata,omitempty"`
}

// Message is a persisted chat message. Rows are created on send and never
// mutated; deletion is a soft flag and deleted rows are filtered out of
// every read path.
type Message struct {
	ID             string `gorm:"primaryKey" json:"id"`
	SenderID       string `gorm:"type:text;not null;index:idx_conv_msg" json:"senderID"`
	RecipientID    string `gorm:"type:text;index" json:"recipientID,omitempty"`
	ConversationID string `gorm:"type:uuid;index:idx_conv_msg" json:"conversationID,omitempty"`

	// Content holds the JSON payload {type, text, metadata?}; Text is the
	// derived plain-text fallback column.
	Content string `gorm:"type:text;not null" json:"content"`
	Text    string `gorm:"type:text" json:"text"`

	MessageType string    `gorm:"type:text" json:"messageType,omitempty"`
	Source      string    `gorm:"type:text" json:"source,omitempty"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	IsDeleted   bool      `gorm:"default:false;index" json:"isDeleted"`
}

// Payload decodes the structured content column. A plain-text legacy row
// (content that is not valid JSON) decodes to a text payload carrying the
// fallback column.
func (m *Message) Payload() MessagePayload {
	var p MessagePayload
	if err := json.Unmarshal([]byte(m.Content), &p); err != nil || p.Type == "" {
		return MessagePayload{Type: "text", Text: m.Text}
	}
	return p
}

// SetPayload encodes the payload into the content column and mirrors the
// text into the derived fallback column.
func (m *Message) SetPayload(p MessagePayload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	m.Content = string(raw)
	m.Text = p.Text
	m.MessageType = p.Type
	return nil
}

// Attachment is a secondary record written best-effort for image and
// document messages that carry a file URL.
type Attachment struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	MessageID  string    `gorm:"type:text;not null;index" json:"messageID"`
	FileURL    string    `gorm:"type:text;not null" json:"fileURL"`
	FileType   string    `gorm:"type:text" json:"fileType"`
	UploadedBy string    `gorm:"type:text;not null" json:"uploadedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}
