package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"voyago/backend/internal/models"
)

// FindOrCreateWishlist returns the wishlist for (user, city, country),
// creating it when absent. The composite unique index is the backstop:
// a conflicting insert is treated as "already exists" and the existing
// row is fetched, so concurrent saves cannot produce duplicates.
func (s *Service) FindOrCreateWishlist(ctx context.Context, userID, name, city, country string) (*models.Wishlist, error) {
	wl := models.Wishlist{
		UserID:  userID,
		Name:    name,
		City:    city,
		Country: country,
	}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&wl).Error
	if err != nil {
		return nil, err
	}
	if wl.ID != 0 {
		return &wl, nil
	}

	// Conflict path: the row already existed.
	var existing models.Wishlist
	err = s.DB.WithContext(ctx).
		Where("user_id = ? AND city = ? AND country = ?", userID, city, country).
		First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// AddWishlistItem inserts an item, reporting whether a new row was created.
// The (wishlist, element) unique index makes re-saving idempotent: the
// conflict is the "already saved" signal, not an error.
func (s *Service) AddWishlistItem(ctx context.Context, wishlistID, tripElementID uint) (bool, error) {
	item := models.WishlistItem{
		WishlistID:    wishlistID,
		TripElementID: tripElementID,
	}
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&item)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListWishlists returns the user's wishlists with items and their trip
// elements preloaded.
func (s *Service) ListWishlists(ctx context.Context, userID string) ([]models.Wishlist, error) {
	var lists []models.Wishlist
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Items.TripElement").
		Order("created_at asc").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

// RemoveWishlistItem deletes one item, scoped to the owning user.
func (s *Service) RemoveWishlistItem(ctx context.Context, userID string, itemID uint) error {
	return s.DB.WithContext(ctx).
		Where("id = ? AND wishlist_id IN (?)",
			itemID,
			s.DB.Model(&models.Wishlist{}).Select("id").Where("user_id = ?", userID),
		).
		Delete(&models.WishlistItem{}).Error
}

// DeleteWishlist removes a wishlist and all its items in one transaction,
// scoped to the owning user.
func (s *Service) DeleteWishlist(ctx context.Context, userID string, wishlistID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wl models.Wishlist
		err := tx.Where("id = ? AND user_id = ?", wishlistID, userID).First(&wl).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Where("wishlist_id = ?", wl.ID).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&wl).Error
	})
}

// GetTripElement loads a trip element by id. A missing row returns (nil, nil).
func (s *Service) GetTripElement(ctx context.Context, id uint) (*models.TripElement, error) {
	var el models.TripElement
	err := s.DB.WithContext(ctx).First(&el, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &el, nil
}

// ListTripElements returns elements, optionally filtered by category.
func (s *Service) ListTripElements(ctx context.Context, category string) ([]models.TripElement, error) {
	var elements []models.TripElement
	q := s.DB.WithContext(ctx)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Order("name asc").Find(&elements).Error; err != nil {
		return nil, err
	}
	return elements, nil
}

// CreateTripElement inserts a catalog row. Admin tooling only.
func (s *Service) CreateTripElement(ctx context.Context, el *models.TripElement) error {
	return s.DB.WithContext(ctx).Create(el).Error
}
