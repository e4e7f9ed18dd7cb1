package chatfeed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"voyago/backend/internal/chatfeed"
	"voyago/backend/internal/models"
)

func TestLoad_OrdersOldestFirst(t *testing.T) {
	store := new(MockStore)
	svc := testService(store)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Storage returns newest first; the view must flip to display order.
	store.On("ListRecentMessages", mock.Anything, "c1", "traveler-1", svc.PageSize()).Return([]models.Message{
		row("m3", "advisor-1", "c1", "third", base.Add(2*time.Minute)),
		row("m2", "traveler-1", "c1", "second", base.Add(time.Minute)),
		row("m1", "advisor-1", "c1", "first", base),
	}, false, nil)

	sync := chatfeed.NewConversationSync(svc, "traveler-1", "c1")
	assert.NoError(t, sync.Load(context.Background()))

	got := sync.Messages()
	assert.Len(t, got, 3)
	assert.Equal(t, []string{"m1", "m2", "m3"}, []string{got[0].ID, got[1].ID, got[2].ID})
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Timestamp.Before(got[i-1].Timestamp))
	}
	assert.False(t, sync.HasMore())
}

func TestLoadOlder_NeverDuplicates(t *testing.T) {
	store := new(MockStore)
	svc := testService(store)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store.On("ListRecentMessages", mock.Anything, "c1", "traveler-1", svc.PageSize()).Return([]models.Message{
		row("m2", "advisor-1", "c1", "newer", base.Add(time.Minute)),
	}, true, nil)
	// Overlapping older pages simulate a cursor race; ids must stay unique.
	store.On("ListMessagesBefore", mock.Anything, "c1", "traveler-1", mock.AnythingOfType("time.Time"), svc.PageSize()).Return([]models.Message{
		row("m1", "traveler-1", "c1", "older", base),
	}, false, nil)

	sync := chatfeed.NewConversationSync(svc, "traveler-1", "c1")
	assert.NoError(t, sync.Load(context.Background()))
	assert.True(t, sync.HasMore())

	ok, err := sync.LoadOlder(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)
	ok, err = sync.LoadOlder(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)

	got := sync.Messages()
	assert.Len(t, got, 2)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m2", got[1].ID)
	assert.False(t, sync.HasMore())
}

func TestLoadOlder_NoCursorIsNoOp(t *testing.T) {
	store := new(MockStore)
	sync := chatfeed.NewConversationSync(testService(store), "traveler-1", "c1")

	ok, err := sync.LoadOlder(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)
	store.AssertNotCalled(t, "ListMessagesBefore", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendThenRealtimeEcho_AppearsOnce(t *testing.T) {
	store := new(MockStore)
	svc := testService(store)

	var published models.ChatEvent
	store.On("ListRecentMessages", mock.Anything, "c1", "traveler-1", svc.PageSize()).Return([]models.Message{}, false, nil)
	store.On("CreateMessage", mock.Anything, mock.AnythingOfType("*models.Message")).Return(nil)
	store.On("PublishEvent", mock.Anything, mock.AnythingOfType("models.ChatEvent")).Run(func(args mock.Arguments) {
		published = args.Get(1).(models.ChatEvent)
	}).Return(nil)

	sync := chatfeed.NewConversationSync(svc, "traveler-1", "c1")
	assert.NoError(t, sync.Load(context.Background()))
	dm, ok := sync.Send(context.Background(), models.SendRequest{MessageID: "dup-1", Type: "text", Text: "hello"})
	assert.True(t, ok)
	assert.NotNil(t, dm)

	// The published event arriving back over the socket must not double
	// the optimistic append.
	assert.Nil(t, sync.ApplyEvent(context.Background(), published))
	assert.Nil(t, sync.ApplyEvent(context.Background(), published))

	got := sync.Messages()
	assert.Len(t, got, 1)
	assert.Equal(t, "dup-1", got[0].ID)
}

func TestApplyEvent_SameUserOtherSession(t *testing.T) {
	store := new(MockStore)
	svc := testService(store)

	var published models.ChatEvent
	store.On("CreateMessage", mock.Anything, mock.Anything).Return(nil)
	store.On("PublishEvent", mock.Anything, mock.AnythingOfType("models.ChatEvent")).Run(func(args mock.Arguments) {
		published = args.Get(1).(models.ChatEvent)
	}).Return(nil)

	sender := chatfeed.NewConversationSync(svc, "traveler-1", "c1")
	otherTab := chatfeed.NewConversationSync(svc, "traveler-1", "c1")

	_, ok := sender.Send(context.Background(), models.SendRequest{Type: "text", Text: "from tab A"})
	assert.True(t, ok)

	// The user's second session has not seen the id, so the event lands
	// there even though it carries their own sender id.
	dm := otherTab.ApplyEvent(context.Background(), published)
	assert.NotNil(t, dm)
	assert.Equal(t, "from tab A", dm.Text)
	assert.Len(t, otherTab.Messages(), 1)
}

func TestApplyEvent_OtherSenderDeduped(t *testing.T) {
	store := new(MockStore)
	sync := chatfeed.NewConversationSync(testService(store), "traveler-1", "c1")

	event := models.ChatEvent{
		MessageID:      "m9",
		SenderID:       "advisor-1",
		ConversationID: "c1",
		Content:        "see you in Lisbon",
		Type:           "text",
		Timestamp:      time.Now().UTC(),
	}
	sync.ApplyEvent(context.Background(), event)
	sync.ApplyEvent(context.Background(), event)

	got := sync.Messages()
	assert.Len(t, got, 1)
	assert.Equal(t, "see you in Lisbon", got[0].Text)
	assert.Equal(t, "advisor", got[0].SenderRole)
}

func TestApplyEvent_OtherConversationIgnored(t *testing.T) {
	store := new(MockStore)
	sync := chatfeed.NewConversationSync(testService(store), "traveler-1", "c1")

	sync.ApplyEvent(context.Background(), models.ChatEvent{
		MessageID:      "m9",
		SenderID:       "advisor-1",
		ConversationID: "c2",
		Content:        "wrong room",
		Type:           "text",
	})
	assert.Empty(t, sync.Messages())
}

func TestSend_PersistsRowAndGrowsView(t *testing.T) {
	store := new(MockStore)
	svc := testService(store)

	var created models.Message
	store.On("ListRecentMessages", mock.Anything, "c1", "traveler-1", svc.PageSize()).Return([]models.Message{}, false, nil)
	store.On("CreateMessage", mock.Anything, mock.AnythingOfType("*models.Message")).Run(func(args mock.Arguments) {
		created = *args.Get(1).(*models.Message)
	}).Return(nil)
	store.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	sync := chatfeed.NewConversationSync(svc, "traveler-1", "c1")
	assert.NoError(t, sync.Load(context.Background()))
	_, ok := sync.Send(context.Background(), models.SendRequest{Type: "text", Text: "hello"})
	assert.True(t, ok)

	assert.Equal(t, "c1", created.ConversationID)
	assert.Equal(t, "traveler-1", created.SenderID)
	payload := created.Payload()
	assert.Equal(t, "text", payload.Type)
	assert.Equal(t, "hello", payload.Text)

	got := sync.Messages()
	assert.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Text)
}

func TestSend_EmptyContentRejected(t *testing.T) {
	store := new(MockStore)
	sync := chatfeed.NewConversationSync(testService(store), "traveler-1", "c1")

	_, ok := sync.Send(context.Background(), models.SendRequest{Type: "text", Text: "   "})
	assert.False(t, ok)
	store.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestSend_DerivesConversationFromPair(t *testing.T) {
	store := new(MockStore)
	svc := testService(store)

	var created models.Message
	store.On("CreateMessage", mock.Anything, mock.AnythingOfType("*models.Message")).Run(func(args mock.Arguments) {
		created = *args.Get(1).(*models.Message)
	}).Return(nil)
	store.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Send(context.Background(), "traveler-1", models.SendRequest{
		RecipientID: "advisor-1",
		Type:        "text",
		Text:        "hi",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.DeriveConversationID("traveler-1", "advisor-1"), created.ConversationID)
	assert.Equal(t, models.DeriveConversationID("advisor-1", "traveler-1"), created.ConversationID)
}

func TestSend_UnknownTypeFallsBackToText(t *testing.T) {
	store := new(MockStore)
	svc := testService(store)

	var created models.Message
	store.On("CreateMessage", mock.Anything, mock.AnythingOfType("*models.Message")).Run(func(args mock.Arguments) {
		created = *args.Get(1).(*models.Message)
	}).Return(nil)
	store.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Send(context.Background(), "traveler-1", models.SendRequest{
		ConversationID: "c1",
		Type:           "carrier-pigeon",
		Text:           "hi",
	})
	assert.NoError(t, err)
	assert.Equal(t, "text", created.Payload().Type)
}

func TestSend_AttachmentFailureDoesNotFailSend(t *testing.T) {
	store := new(MockStore)
	svc := testService(store)

	store.On("CreateMessage", mock.Anything, mock.Anything).Return(nil)
	store.On("CreateAttachment", mock.Anything, mock.AnythingOfType("*models.Attachment")).Return(errors.New("disk full"))
	store.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	dm, err := svc.Send(context.Background(), "traveler-1", models.SendRequest{
		ConversationID: "c1",
		Type:           "image",
		Text:           "sunset",
		Metadata:       &models.MessageMetadata{FileURL: "https://cdn.example.com/sunset.jpg", FileType: "image/jpeg"},
	})
	assert.NoError(t, err)
	assert.NotNil(t, dm)
	store.AssertCalled(t, "CreateAttachment", mock.Anything, mock.AnythingOfType("*models.Attachment"))
}

func TestLoad_UnresolvableSenderDroppedSilently(t *testing.T) {
	store := new(MockStore)
	svc := testService(store)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store.On("ListRecentMessages", mock.Anything, "c1", "traveler-1", svc.PageSize()).Return([]models.Message{
		row("m2", "traveler-1", "c1", "kept", base.Add(time.Minute)),
		row("m1", "ghost", "c1", "orphaned", base),
	}, false, nil)
	// The cursor must come from the raw rows, dropped senders included.
	store.On("ListMessagesBefore", mock.Anything, "c1", "traveler-1", base, svc.PageSize()).Return([]models.Message{}, false, nil)

	sync := chatfeed.NewConversationSync(svc, "traveler-1", "c1")
	assert.NoError(t, sync.Load(context.Background()))

	got := sync.Messages()
	assert.Len(t, got, 1)
	assert.Equal(t, "m2", got[0].ID)

	ok, err := sync.LoadOlder(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)
	store.AssertExpectations(t)
}
