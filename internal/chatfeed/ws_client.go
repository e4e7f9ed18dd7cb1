package chatfeed

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"voyago/backend/internal/metrics"
	"voyago/backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Frame is one outbound payload on the socket: the full session view after
// a load, or a single appended message.
type Frame struct {
	Kind     string           `json:"kind"` // "history" or "message"
	Messages []DisplayMessage `json:"messages,omitempty"`
	Message  *DisplayMessage  `json:"message,omitempty"`
	HasMore  bool             `json:"hasMore"`
}

// inboundFrame is what clients write to the socket: a send request, or an
// action such as "load_older" for backward pagination.
type inboundFrame struct {
	Action string `json:"action,omitempty"`
	models.SendRequest
}

// WebSocketClient implements the Client interface over gorilla/websocket.
// Each connection owns a ConversationSync; the hub delivers raw events into
// Send and the view decides what actually reaches the wire.
type WebSocketClient struct {
	UserID         string
	ConversationID string
	Conn           *websocket.Conn
	Hub            *Hub
	View           *ConversationSync
	Send           chan models.ChatEvent

	ctx    context.Context
	cancel context.CancelFunc
	frames chan Frame
}

// NewWebSocketClient attaches a connection to the hub with a fresh session
// view. The connection outlives the upgrade request, so the client carries
// its own lifetime context.
func NewWebSocketClient(conn *websocket.Conn, hub *Hub, view *ConversationSync, userID, conversationID string) *WebSocketClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &WebSocketClient{
		UserID:         userID,
		ConversationID: conversationID,
		Conn:           conn,
		Hub:            hub,
		View:           view,
		Send:           make(chan models.ChatEvent, 256),
		ctx:            ctx,
		cancel:         cancel,
		frames:         make(chan Frame, 16),
	}
}

func (c *WebSocketClient) GetUserID() string                       { return c.UserID }
func (c *WebSocketClient) GetConversationID() string               { return c.ConversationID }
func (c *WebSocketClient) GetSendChannel() chan<- models.ChatEvent { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close cancels the session and closes the Send channel, which stops the
// write pump.
func (c *WebSocketClient) Close() {
	c.cancel()
	close(c.Send)
	metrics.ActiveConnections.Dec()
}

// historyFrame snapshots the session view for the wire.
func historyFrame(view *ConversationSync) Frame {
	return Frame{Kind: "history", Messages: view.Messages(), HasMore: view.HasMore()}
}

// messageFrame wraps one appended message for the wire.
func messageFrame(dm *DisplayMessage) Frame {
	return Frame{Kind: "message", Message: dm}
}

// enqueue hands a frame to the write pump without blocking past the
// session's lifetime.
func (c *WebSocketClient) enqueue(f Frame) {
	select {
	case c.frames <- f:
	case <-c.ctx.Done():
	}
}

func (c *WebSocketClient) readPump() {
	defer func() {
		select {
		case c.Hub.UnregisterCh <- c:
		case <-c.Hub.Done():
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var in inboundFrame
		if err := json.Unmarshal(message, &in); err != nil {
			log.Printf("error decoding frame from %s: %v", c.UserID, err)
			continue
		}

		switch in.Action {
		case "load_older":
			loaded, err := c.View.LoadOlder(c.ctx)
			if err != nil {
				log.Printf("error loading older page for %s: %v", c.UserID, err)
				continue
			}
			if loaded {
				c.enqueue(historyFrame(c.View))
			}

		default:
			if in.ConversationID == "" {
				in.ConversationID = c.ConversationID
			}
			if dm, ok := c.View.Send(c.ctx, in.SendRequest); ok && dm != nil {
				c.enqueue(messageFrame(dm))
			}
		}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	// The session opens with the most recent page.
	if err := c.View.Load(c.ctx); err != nil {
		log.Printf("error loading history for %s: %v", c.UserID, err)
	} else if err := c.writeFrame(historyFrame(c.View)); err != nil {
		return
	}

	for {
		select {
		case event, ok := <-c.Send:
			if !ok {
				c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// The view filters echoes and foreign conversations; only a
			// genuine append reaches the wire.
			if dm := c.View.ApplyEvent(c.ctx, event); dm != nil {
				if err := c.writeFrame(messageFrame(dm)); err != nil {
					return
				}
			}

		case frame := <-c.frames:
			if err := c.writeFrame(frame); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WebSocketClient) writeFrame(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		log.Printf("error encoding frame for %s: %v", c.UserID, err)
		return nil
	}
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}
