package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voyago/backend/internal/chatfeed"
	"voyago/backend/internal/metrics"
	"voyago/backend/internal/models"
)

// ListInbox returns the user's most recent messages across all
// conversations.
func (h *Handler) ListInbox(c *gin.Context) {
	h.listPage(c, "")
}

// ListMessages returns one conversation's page: the most recent messages,
// or, with a `before` cursor, the page strictly older than it.
func (h *Handler) ListMessages(c *gin.Context) {
	h.listPage(c, c.Param("id"))
}

func (h *Handler) listPage(c *gin.Context, conversationID string) {
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	var (
		page    []chatfeed.DisplayMessage
		hasMore bool
		cursor  *time.Time
		err     error
	)
	if rawBefore := c.Query("before"); rawBefore != "" {
		before, parseErr := time.Parse(time.RFC3339Nano, rawBefore)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before cursor"})
			return
		}
		page, hasMore, cursor, err = h.Chat.Older(ctx, conversationID, userID, before)
	} else {
		page, hasMore, cursor, err = h.Chat.History(ctx, conversationID, userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.notice(c, "chat.load_failed")})
		return
	}

	resp := gin.H{"messages": page, "hasMore": hasMore}
	if cursor != nil {
		resp["cursor"] = cursor.Format(time.RFC3339Nano)
	}
	c.JSON(http.StatusOK, resp)
}

// SendMessage persists a message into the conversation and publishes the
// realtime event. Advisors get a Telegram alert for traveler messages.
func (h *Handler) SendMessage(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ConversationID = c.Param("id")

	dm, err := h.Chat.Send(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, chatfeed.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": h.notice(c, "chat.send_failed")})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.notice(c, "chat.send_failed")})
		return
	}

	if dm != nil {
		metrics.MessagesSent.WithLabelValues(dm.Type).Inc()
		if dm.SenderRole == "client" {
			h.Notifier.ClientMessage(dm.SenderName, req.ConversationID, dm.Text)
		}
	}
	c.JSON(http.StatusCreated, gin.H{"message": dm})
}

// DeleteMessage soft-deletes one of the caller's own messages. The row
// stays; reads filter it.
func (h *Handler) DeleteMessage(c *gin.Context) {
	userID := c.GetString("user_id")
	if err := h.Store.SoftDeleteMessage(c.Request.Context(), c.Param("id"), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// AssignAdvisor pairs the caller with the least-loaded advisor.
func (h *Handler) AssignAdvisor(c *gin.Context) {
	userID := c.GetString("user_id")

	assignment, err := h.Assigner.Assign(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, chatfeed.ErrNoAdvisors) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No advisors are available right now"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// Typing opens the caller's short-lived typing window in the conversation.
func (h *Handler) Typing(c *gin.Context) {
	userID := c.GetString("user_id")
	if err := h.Store.SetTyping(c.Request.Context(), c.Param("id"), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"typing": true})
}

// TypingStatus reports whether the queried participant is typing.
func (h *Handler) TypingStatus(c *gin.Context) {
	other := c.Query("user_id")
	if other == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id query parameter required"})
		return
	}
	typing, err := h.Store.IsTyping(c.Request.Context(), c.Param("id"), other)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userID": other, "typing": typing})
}
