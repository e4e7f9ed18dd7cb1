package chatfeed

import (
	"context"

	"github.com/rs/zerolog"

	"voyago/backend/internal/models"
)

// EventSource feeds the hub with insert notifications across all
// conversations (Redis pub/sub in production).
type EventSource interface {
	SubscribeEvents(ctx context.Context) <-chan models.ChatEvent
}

// Hub is the central dispatcher for realtime connections. One goroutine owns
// all of its state; everything reaches it through channels. Persistence does
// not pass through the hub: each connection writes through its session view
// and the hub only fans the resulting pub/sub events back out.
type Hub struct {
	RegisterCh   chan Client
	UnregisterCh chan Client

	source EventSource
	log    zerolog.Logger
	done   chan struct{}

	clients map[Client]bool
	byConv  map[string]map[Client]bool
}

func NewHub(source EventSource, log zerolog.Logger) *Hub {
	return &Hub{
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		source:       source,
		log:          log,
		done:         make(chan struct{}),
		clients:      make(map[Client]bool),
		byConv:       make(map[string]map[Client]bool),
	}
}

// Done is closed when the hub stops accepting registrations. Clients select
// on it so a late unregister never blocks against a stopped hub.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Run is the hub's main loop. It returns when the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	events := h.source.SubscribeEvents(ctx)
	h.log.Info().Msg("chat hub started")

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.RegisterCh:
			h.clients[client] = true
			conv := client.GetConversationID()
			if h.byConv[conv] == nil {
				h.byConv[conv] = make(map[Client]bool)
			}
			h.byConv[conv][client] = true
			h.log.Debug().Str("user_id", client.GetUserID()).Str("conversation_id", conv).Msg("client registered")

		case client := <-h.UnregisterCh:
			if h.clients[client] {
				h.drop(client)
			}

		case event, ok := <-events:
			if !ok {
				for client := range h.clients {
					h.drop(client)
				}
				return
			}
			h.fanOut(event)
		}
	}
}

// fanOut delivers an event to every connection following its conversation.
// The sender's own connections receive it too; the view-side id guard
// absorbs the echo. Slow clients are evicted rather than blocked on.
func (h *Hub) fanOut(event models.ChatEvent) {
	for client := range h.byConv[event.ConversationID] {
		select {
		case client.GetSendChannel() <- event:
		default:
			h.log.Warn().Str("user_id", client.GetUserID()).Msg("slow client evicted")
			h.drop(client)
		}
	}
}

func (h *Hub) drop(client Client) {
	delete(h.clients, client)
	conv := client.GetConversationID()
	if set := h.byConv[conv]; set != nil {
		delete(set, client)
		if len(set) == 0 {
			delete(h.byConv, conv)
		}
	}
	client.Close()
}
