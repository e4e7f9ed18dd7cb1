package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"voyago/backend/internal/metrics"
	"voyago/backend/internal/models"
	"voyago/backend/internal/wishlist"
)

// ListWishlists returns the caller's flat wishlist collection.
func (h *Handler) ListWishlists(c *gin.Context) {
	lists, err := h.Store.ListWishlists(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.notice(c, "wishlist.load_failed")})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlists": lists})
}

// OrganizedWishlists returns the collection grouped by country, then city.
func (h *Handler) OrganizedWishlists(c *gin.Context) {
	groups, err := h.Wishlists.Organize(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.notice(c, "wishlist.load_failed")})
		return
	}
	c.JSON(http.StatusOK, gin.H{"countries": groups})
}

type saveItemInput struct {
	TripElementID uint `json:"tripElementID" binding:"required"`
}

// SaveToWishlist buckets a trip element into the destination wishlist,
// creating it on first save. Re-saving surfaces a notice instead of a
// duplicate row.
func (h *Handler) SaveToWishlist(c *gin.Context) {
	var input saveItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Wishlists.Add(c.Request.Context(), c.GetString("user_id"), input.TripElementID)
	if err != nil {
		if errors.Is(err, wishlist.ErrElementNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip element not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		return
	}

	notice := h.notice(c, "wishlist.saved")
	outcome := "created"
	if result.AlreadySaved {
		notice = h.notice(c, "wishlist.already_saved")
		outcome = "duplicate"
	}
	metrics.WishlistSaves.WithLabelValues(outcome).Inc()

	c.JSON(http.StatusOK, gin.H{
		"notice":       notice,
		"alreadySaved": result.AlreadySaved,
		"wishlists":    result.Collection,
	})
}

// RemoveWishlistItem deletes one saved item.
func (h *Handler) RemoveWishlistItem(c *gin.Context) {
	itemID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}
	lists, err := h.Wishlists.RemoveItem(c.Request.Context(), c.GetString("user_id"), itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlists": lists})
}

// DeleteWishlist removes a wishlist and all its items.
func (h *Handler) DeleteWishlist(c *gin.Context) {
	wishlistID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}
	lists, err := h.Wishlists.Delete(c.Request.Context(), c.GetString("user_id"), wishlistID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlists": lists})
}

// ListTripElements returns the explorable catalog, optionally by category.
func (h *Handler) ListTripElements(c *gin.Context) {
	elements, err := h.Store.ListTripElements(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tripElements": elements})
}

type tripElementInput struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
	Category string `json:"category" binding:"required"`
	ImageURL string `json:"imageURL"`
}

// CreateTripElement adds a catalog entry. Admin only.
func (h *Handler) CreateTripElement(c *gin.Context) {
	var input tripElementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	element := models.TripElement{
		Name:     input.Name,
		Location: input.Location,
		Category: input.Category,
		ImageURL: input.ImageURL,
	}
	if err := h.Store.CreateTripElement(c.Request.Context(), &element); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tripElement": element})
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, err
	}
	return uint(val), nil
}
