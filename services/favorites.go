package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fenilmodi00/ipo-dashboard/shared"
)

// FavoritesRepository stores the IPO ids a user follows.
type FavoritesRepository interface {
	Add(ctx context.Context, userID, ipoID string) error
	Remove(ctx context.Context, userID, ipoID string) error
	List(ctx context.Context, userID string) ([]string, error)
	Contains(ctx context.Context, userID, ipoID string) (bool, error)
}

// ValidateFavoriteKey rejects empty user or ipo ids.
func ValidateFavoriteKey(userID, ipoID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(ipoID) == "" {
		return shared.NewServiceError(
			shared.ErrorCategoryValidation,
			"INVALID_FAVORITE",
			"user id and ipo id are required",
			"favorites",
			"validate",
			false,
			nil,
		)
	}
	return nil
}

// InMemoryFavorites is a FavoritesRepository backed by a map
type InMemoryFavorites struct {
	mutex sync.RWMutex
	items map[string]map[string]struct{}
}

func NewInMemoryFavorites() *InMemoryFavorites {
	return &InMemoryFavorites{items: make(map[string]map[string]struct{})}
}

func (f *InMemoryFavorites) Add(ctx context.Context, userID, ipoID string) error {
	if err := ValidateFavoriteKey(userID, ipoID); err != nil {
		return err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()

	set, ok := f.items[userID]
	if !ok {
		set = make(map[string]struct{})
		f.items[userID] = set
	}
	set[ipoID] = struct{}{}
	return nil
}

// Remove is a no-op for ids that are not favorites.
func (f *InMemoryFavorites) Remove(ctx context.Context, userID, ipoID string) error {
	if err := ValidateFavoriteKey(userID, ipoID); err != nil {
		return err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if set, ok := f.items[userID]; ok {
		delete(set, ipoID)
		if len(set) == 0 {
			delete(f.items, userID)
		}
	}
	return nil
}

// List returns the ids in ascending order.
func (f *InMemoryFavorites) List(ctx context.Context, userID string) ([]string, error) {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	ids := make([]string, 0, len(f.items[userID]))
	for id := range f.items[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *InMemoryFavorites) Contains(ctx context.Context, userID, ipoID string) (bool, error) {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	_, ok := f.items[userID][ipoID]
	return ok, nil
}
