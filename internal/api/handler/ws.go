package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"voyago/backend/internal/chatfeed"
	"voyago/backend/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and attaches it to the hub,
// scoped to one conversation. The token rides the Authorization header or,
// for browser clients that cannot set headers on the upgrade, the `token`
// query parameter.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}

	userID, _, err := parseToken(tokenString, h.JWTSecret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	conversationID := c.Query("conversation_id")
	if conversationID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "conversation_id query parameter required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	view := chatfeed.NewConversationSync(h.Chat, userID, conversationID)
	client := chatfeed.NewWebSocketClient(conn, h.Hub, view, userID, conversationID)

	h.Hub.RegisterCh <- client
	metrics.ActiveConnections.Inc()
	client.Run()
}
