package chatfeed_test

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"voyago/backend/internal/chatfeed"
	"voyago/backend/internal/models"
	"voyago/backend/internal/profile"
)

// MockStore is a testify mock of the chatfeed.MessageStore interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListRecentMessages(ctx context.Context, conversationID, userID string, limit int) ([]models.Message, bool, error) {
	args := m.Called(ctx, conversationID, userID, limit)
	return args.Get(0).([]models.Message), args.Bool(1), args.Error(2)
}

func (m *MockStore) ListMessagesBefore(ctx context.Context, conversationID, userID string, before time.Time, limit int) ([]models.Message, bool, error) {
	args := m.Called(ctx, conversationID, userID, before, limit)
	return args.Get(0).([]models.Message), args.Bool(1), args.Error(2)
}

func (m *MockStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockStore) CreateAttachment(ctx context.Context, att *models.Attachment) error {
	args := m.Called(ctx, att)
	return args.Error(0)
}

func (m *MockStore) PublishEvent(ctx context.Context, event models.ChatEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockUsers is a testify mock of the chatfeed.AdvisorStore interface.
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) ListAdvisors(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUsers) CountConversationsForUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// StubProfiles resolves from a fixed map; unknown ids resolve to nil,
// which the conversion path treats as a silent drop.
type StubProfiles struct {
	Profiles map[string]*profile.Profile
}

func (s *StubProfiles) Resolve(ctx context.Context, userID string) (*profile.Profile, error) {
	return s.Profiles[userID], nil
}

// FakeSource implements chatfeed.EventSource over a plain channel.
type FakeSource struct {
	Events chan models.ChatEvent
}

func (f *FakeSource) SubscribeEvents(ctx context.Context) <-chan models.ChatEvent {
	return f.Events
}

// MockClient is a minimal hub client for fan-out tests.
type MockClient struct {
	UserID         string
	ConversationID string
	SendCh         chan models.ChatEvent

	closeOnce sync.Once
	closed    chan struct{}
}

func newMockClient(userID, conversationID string, buffer int) *MockClient {
	return &MockClient{
		UserID:         userID,
		ConversationID: conversationID,
		SendCh:         make(chan models.ChatEvent, buffer),
		closed:         make(chan struct{}),
	}
}

func (c *MockClient) GetUserID() string                       { return c.UserID }
func (c *MockClient) GetConversationID() string               { return c.ConversationID }
func (c *MockClient) GetSendChannel() chan<- models.ChatEvent { return c.SendCh }
func (c *MockClient) Run()                                    {}
func (c *MockClient) Close()                                  { c.closeOnce.Do(func() { close(c.closed) }) }

func (c *MockClient) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func testProfiles() *StubProfiles {
	return &StubProfiles{Profiles: map[string]*profile.Profile{
		"traveler-1": {ID: "traveler-1", Name: "Ana", Role: "client", AvatarURL: "https://example.com/ana.png"},
		"advisor-1":  {ID: "advisor-1", Name: "Marco", Role: "advisor", AvatarURL: "https://example.com/marco.png"},
	}}
}

func testService(store *MockStore) *chatfeed.Service {
	return chatfeed.NewService(store, testProfiles(), zerolog.Nop())
}

// row builds a message with a bare text payload.
func row(id, sender, conversationID, text string, ts time.Time) models.Message {
	msg := models.Message{
		ID:             id,
		SenderID:       sender,
		ConversationID: conversationID,
		Timestamp:      ts,
	}
	_ = msg.SetPayload(models.MessagePayload{Type: "text", Text: text})
	return msg
}
