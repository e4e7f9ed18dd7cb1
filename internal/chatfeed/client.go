package chatfeed

import "voyago/backend/internal/models"

// Client is the interface for one realtime connection attached to the hub.
// It abstracts the transport so the hub can manage connection types
// uniformly.
type Client interface {
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() string
	// GetConversationID returns the conversation this connection follows.
	GetConversationID() string

	// GetSendChannel returns the channel the hub delivers events into.
	GetSendChannel() chan<- models.ChatEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the client down and stops its write pump.
	Close()
}
