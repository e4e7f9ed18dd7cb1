// Package profile resolves user ids to the denormalized display profile the
// chat view renders. Lookups go through a Redis TTL cache so staleness is
// bounded without an explicit invalidation path.
package profile

import (
	"context"

	"github.com/rs/zerolog"

	"voyago/backend/internal/models"
)

// Store is the slice of the storage layer the resolver needs.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CachedProfile(ctx context.Context, userID string) (*models.User, error)
	CacheProfile(ctx context.Context, user *models.User) error
}

// Profile is the read-only display shape derived from a user row.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"` // coarse: "advisor" or "client"
	AvatarURL string `json:"avatarURL"`
}

// Resolver caches profile lookups by id.
type Resolver struct {
	store Store
	log   zerolog.Logger
}

func NewResolver(store Store, log zerolog.Logger) *Resolver {
	return &Resolver{store: store, log: log}
}

// Resolve returns the display profile for a user id, or (nil, nil) when the
// user does not exist. Cache errors degrade to a direct lookup.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, nil
	}

	cached, err := r.store.CachedProfile(ctx, userID)
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("profile cache read failed")
	}
	user := cached
	if user == nil {
		user, err = r.store.GetUserByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, nil
		}
		if err := r.store.CacheProfile(ctx, user); err != nil {
			r.log.Warn().Err(err).Str("user_id", userID).Msg("profile cache write failed")
		}
	}

	return FromUser(user), nil
}

// FromUser derives the display profile from a user row.
func FromUser(user *models.User) *Profile {
	role := CoarseRole(user.Role)
	avatar := user.AvatarURL
	if avatar == "" {
		avatar = PlaceholderAvatar(role)
	}
	return &Profile{
		ID:        user.ID,
		Name:      user.DisplayName,
		Email:     user.Email,
		Role:      role,
		AvatarURL: avatar,
	}
}

// CoarseRole collapses account roles to the two the chat view knows about:
// advisors and admins render as "advisor", everyone else as "client".
func CoarseRole(role string) string {
	switch role {
	case models.RoleAdvisor, models.RoleAdmin:
		return "advisor"
	default:
		return "client"
	}
}

// PlaceholderAvatar returns a generated avatar URL for profiles without an
// image, varied by coarse role.
func PlaceholderAvatar(coarseRole string) string {
	if coarseRole == "advisor" {
		return "https://api.dicebear.com/9.x/initials/svg?seed=advisor&backgroundColor=1d4ed8"
	}
	return "https://api.dicebear.com/9.x/initials/svg?seed=traveler&backgroundColor=0d9488"
}
