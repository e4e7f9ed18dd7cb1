// Package wishlist saves trip elements into per-destination lists and
// derives the grouped view the wishlist screens render.
package wishlist

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"voyago/backend/internal/models"
)

// ErrElementNotFound is returned when a save references an unknown trip
// element.
var ErrElementNotFound = errors.New("trip element not found")

// Store is the slice of the storage layer the service needs.
type Store interface {
	GetTripElement(ctx context.Context, id uint) (*models.TripElement, error)
	FindOrCreateWishlist(ctx context.Context, userID, name, city, country string) (*models.Wishlist, error)
	AddWishlistItem(ctx context.Context, wishlistID, tripElementID uint) (bool, error)
	ListWishlists(ctx context.Context, userID string) ([]models.Wishlist, error)
	RemoveWishlistItem(ctx context.Context, userID string, itemID uint) error
	DeleteWishlist(ctx context.Context, userID string, wishlistID uint) error
}

// Service implements save/remove/list grouped by destination.
type Service struct {
	store Store
	log   zerolog.Logger
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{store: store, log: log}
}

// AddResult reports a save plus the refreshed collection. AlreadySaved is
// the idempotent re-save signal surfaced to the UI as a notice.
type AddResult struct {
	Wishlist     *models.Wishlist  `json:"wishlist"`
	AlreadySaved bool              `json:"alreadySaved"`
	Collection   []models.Wishlist `json:"collection"`
}

// Add saves a trip element for the user, bucketed by the destination
// derived from the element's location. The wishlist is created lazily on
// the first save to a new (city, country) pair; the unique indexes make
// both the list and the item idempotent under concurrent saves. The full
// collection is refetched after the mutation rather than patched locally.
func (s *Service) Add(ctx context.Context, userID string, tripElementID uint) (*AddResult, error) {
	element, err := s.store.GetTripElement(ctx, tripElementID)
	if err != nil {
		return nil, err
	}
	if element == nil {
		return nil, ErrElementNotFound
	}

	loc := ParseLocation(element.Location)
	name := loc.City
	if name == "" {
		name = "Saved"
	}

	wl, err := s.store.FindOrCreateWishlist(ctx, userID, name, loc.City, loc.Country)
	if err != nil {
		return nil, err
	}

	created, err := s.store.AddWishlistItem(ctx, wl.ID, tripElementID)
	if err != nil {
		return nil, err
	}

	collection, err := s.store.ListWishlists(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &AddResult{
		Wishlist:     wl,
		AlreadySaved: !created,
		Collection:   collection,
	}, nil
}

// RemoveItem deletes one saved item and refetches the collection.
func (s *Service) RemoveItem(ctx context.Context, userID string, itemID uint) ([]models.Wishlist, error) {
	if err := s.store.RemoveWishlistItem(ctx, userID, itemID); err != nil {
		return nil, err
	}
	return s.store.ListWishlists(ctx, userID)
}

// Delete removes a wishlist as a unit, items included, and refetches the
// collection.
func (s *Service) Delete(ctx context.Context, userID string, wishlistID uint) ([]models.Wishlist, error) {
	if err := s.store.DeleteWishlist(ctx, userID, wishlistID); err != nil {
		return nil, err
	}
	return s.store.ListWishlists(ctx, userID)
}

// CountryGroup is one country's slice of the organized view, cities sorted
// alphabetically.
type CountryGroup struct {
	Country   string            `json:"country"`
	Wishlists []models.Wishlist `json:"wishlists"`
}

// Organize groups the flat collection by country, then city within country,
// both sorted alphabetically. Pure derivation, recomputed on every call.
func (s *Service) Organize(ctx context.Context, userID string) ([]CountryGroup, error) {
	lists, err := s.store.ListWishlists(ctx, userID)
	if err != nil {
		return nil, err
	}
	return organize(lists), nil
}

func organize(lists []models.Wishlist) []CountryGroup {
	byCountry := make(map[string][]models.Wishlist)
	for _, wl := range lists {
		byCountry[wl.Country] = append(byCountry[wl.Country], wl)
	}

	countries := make([]string, 0, len(byCountry))
	for country := range byCountry {
		countries = append(countries, country)
	}
	sort.Strings(countries)

	groups := make([]CountryGroup, 0, len(countries))
	for _, country := range countries {
		wishlists := byCountry[country]
		sort.Slice(wishlists, func(i, j int) bool {
			return wishlists[i].City < wishlists[j].City
		})
		groups = append(groups, CountryGroup{Country: country, Wishlists: wishlists})
	}
	return groups
}
