package models

import "time"

// TripElement is a saveable unit surfaced on exploration screens: a hotel,
// an activity, a restaurant, a neighborhood.
type TripElement struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Location string `gorm:"type:text" json:"location"`
	Category string `gorm:"type:text;index" json:"category"`
	ImageURL string `gorm:"type:text" json:"imageURL"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Wishlist groups saved trip elements by destination. At most one exists per
// (user, city, country); the composite unique index backs the find-or-create
// flow so a conflicting insert means the list already exists.
type Wishlist struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  string `gorm:"type:text;not null;uniqueIndex:idx_user_destination" json:"userID"`
	Name    string `gorm:"not null" json:"name"`
	City    string `gorm:"type:text;not null;uniqueIndex:idx_user_destination" json:"city"`
	Country string `gorm:"type:text;not null;uniqueIndex:idx_user_destination" json:"country"`

	Items []WishlistItem `gorm:"foreignKey:WishlistID" json:"items"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WishlistItem links a wishlist to a trip element. The (wishlist, element)
// pair is unique; re-saving the same element is idempotent.
type WishlistItem struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	WishlistID    uint `gorm:"not null;uniqueIndex:idx_wishlist_element" json:"wishlistID"`
	TripElementID uint `gorm:"not null;uniqueIndex:idx_wishlist_element" json:"tripElementID"`

	TripElement TripElement `gorm:"foreignKey:TripElementID" json:"tripElement"`

	CreatedAt time.Time `json:"createdAt"`
}
