package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	RoleTraveler = "traveler"
	RoleAdvisor  = "advisor"
	RoleAdmin    = "admin"
)

// User represents an account in the system: a traveler, an advisor, or an
// admin. Travel styles are stored as a PostgreSQL text array.
type User struct {
	ID             string         `gorm:"primaryKey" json:"id"`
	Email          string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string         `gorm:"not null" json:"-"`
	DisplayName    string         `json:"displayName"`
	Role           string         `gorm:"type:text;not null;default:'traveler';index" json:"role"`
	AvatarURL      string         `json:"avatarURL"`
	TravelStyles   pq.StringArray `gorm:"type:text[]" json:"travelStyles"`
	EmailConfirmed bool           `gorm:"default:false" json:"emailConfirmed"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate is a GORM hook that generates a new UUID for the user
// if the ID is not already set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
