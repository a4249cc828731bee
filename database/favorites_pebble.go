package database

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/fenilmodi00/ipo-dashboard/services"
	"github.com/fenilmodi00/ipo-dashboard/shared"
	"github.com/sirupsen/logrus"
)

const favoritesPrefix = "fav/"

var _ services.FavoritesRepository = (*PebbleFavorites)(nil)

// PebbleFavorites stores favorites in a local Pebble database, one key per
// (user, ipo) pair. The value is the unix time the favorite was added.
type PebbleFavorites struct {
	db *pebble.DB
}

func OpenPebbleFavorites(dir string) (*PebbleFavorites, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryStorage, "FAVORITES_OPEN_FAILED",
			fmt.Sprintf("failed to open favorites store at %s", dir), "favorites", "open", false, err)
	}
	logrus.WithField("path", dir).Info("Favorites store opened")
	return &PebbleFavorites{db: db}, nil
}

func (f *PebbleFavorites) Close() error {
	return f.db.Close()
}

func (f *PebbleFavorites) Add(ctx context.Context, userID, ipoID string) error {
	if err := services.ValidateFavoriteKey(userID, ipoID); err != nil {
		return err
	}

	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, uint64(time.Now().Unix()))
	if err := f.db.Set(favoriteKey(userID, ipoID), value, pebble.Sync); err != nil {
		return storageError("add", err)
	}
	return nil
}

func (f *PebbleFavorites) Remove(ctx context.Context, userID, ipoID string) error {
	if err := services.ValidateFavoriteKey(userID, ipoID); err != nil {
		return err
	}
	if err := f.db.Delete(favoriteKey(userID, ipoID), pebble.Sync); err != nil {
		return storageError("remove", err)
	}
	return nil
}

// List returns the ids of a user in key order.
func (f *PebbleFavorites) List(ctx context.Context, userID string) ([]string, error) {
	prefix := userPrefix(userID)
	iter, err := f.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: append([]byte(prefix), 0xff),
	})
	if err != nil {
		return nil, storageError("list", err)
	}
	defer iter.Close()

	ids := []string{}
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ids = append(ids, strings.TrimPrefix(string(iter.Key()), prefix))
	}
	if err := iter.Error(); err != nil {
		return nil, storageError("list", err)
	}
	return ids, nil
}

func (f *PebbleFavorites) Contains(ctx context.Context, userID, ipoID string) (bool, error) {
	_, closer, err := f.db.Get(favoriteKey(userID, ipoID))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storageError("contains", err)
	}
	closer.Close()
	return true, nil
}

// userPrefix escapes the user id so that it cannot contain the separator.
func userPrefix(userID string) string {
	return favoritesPrefix + url.PathEscape(userID) + "/"
}

func favoriteKey(userID, ipoID string) []byte {
	return []byte(userPrefix(userID) + ipoID)
}

func storageError(operation string, err error) error {
	return shared.NewServiceError(shared.ErrorCategoryStorage, "FAVORITES_STORAGE_FAILED",
		fmt.Sprintf("favorites %s failed", operation), "favorites", operation, true, err)
}
