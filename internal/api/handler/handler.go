// Package handler wires the HTTP surface: auth, the message feed, the
// realtime upgrade, wishlists, trip elements, and the questionnaire builder.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"voyago/backend/internal/auth"
	"voyago/backend/internal/chatfeed"
	"voyago/backend/internal/localization"
	"voyago/backend/internal/models"
	"voyago/backend/internal/notify"
	"voyago/backend/internal/questionnaire"
	"voyago/backend/internal/storage"
	"voyago/backend/internal/wishlist"
)

// Handler carries every dependency the HTTP layer needs.
type Handler struct {
	Store          *storage.Service
	Auth           *auth.Service
	Chat           *chatfeed.Service
	Hub            *chatfeed.Hub
	Assigner       *chatfeed.Assigner
	Wishlists      *wishlist.Service
	Questionnaires *questionnaire.Service
	Notifier       *notify.Notifier
	Localizer      *localization.Localizer
	JWTSecret      []byte
	Log            zerolog.Logger
}

// Routes mounts every endpoint on the engine.
func (h *Handler) Routes(r *gin.Engine) {
	r.Use(RequestLogger(h.Log), Metrics())

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/confirm", h.ConfirmEmail)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
	}

	api := r.Group("/api", AuthRequired(h.JWTSecret))
	{
		api.GET("/messages", h.ListInbox)
		api.DELETE("/messages/:id", h.DeleteMessage)

		api.POST("/conversations/assign", h.AssignAdvisor)
		api.GET("/conversations/:id/messages", h.ListMessages)
		api.POST("/conversations/:id/messages", h.SendMessage)
		api.POST("/conversations/:id/typing", h.Typing)
		api.GET("/conversations/:id/typing", h.TypingStatus)

		api.GET("/wishlists", h.ListWishlists)
		api.GET("/wishlists/organized", h.OrganizedWishlists)
		api.POST("/wishlists/items", h.SaveToWishlist)
		api.DELETE("/wishlists/items/:id", h.RemoveWishlistItem)
		api.DELETE("/wishlists/:id", h.DeleteWishlist)

		api.GET("/trip-elements", h.ListTripElements)

		api.POST("/questionnaires/:id/responses", h.SubmitQuestionnaire)
	}

	r.GET("/ws", h.ServeWebSocket)

	admin := r.Group("/admin", AuthRequired(h.JWTSecret), RequireRole(models.RoleAdmin))
	{
		admin.POST("/trip-elements", h.CreateTripElement)
		admin.POST("/questionnaires", h.CreateQuestionnaire)
		admin.GET("/questionnaires", h.ListQuestionnaires)
		admin.GET("/questionnaires/:id", h.GetQuestionnaire)
		admin.GET("/questionnaires/:id/preview", h.PreviewQuestionnaire)
		admin.POST("/questionnaires/:id/questions", h.UpsertQuestion)
		admin.DELETE("/questionnaires/:id/questions/:questionID", h.DeleteQuestion)
		admin.PUT("/questionnaires/:id/reorder", h.ReorderQuestions)
		admin.POST("/questionnaires/:id/publish", h.PublishQuestionnaire)
	}
}

// Health reports liveness plus backing-store reachability.
func (h *Handler) Health(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(503, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"status": "ok"})
}

// notice localizes a client-facing message, honoring Accept-Language.
func (h *Handler) notice(c *gin.Context, key string) string {
	return h.Localizer.Get(lang(c), key)
}

// noticef localizes a parameterized message such as "Operation failed: %s".
func (h *Handler) noticef(c *gin.Context, key string, args ...interface{}) string {
	return h.Localizer.Getf(lang(c), key, args...)
}

func lang(c *gin.Context) string {
	l := c.GetHeader("Accept-Language")
	if len(l) >= 2 {
		return l[:2]
	}
	return "en"
}
