package services

import (
	"context"
	"testing"

	"github.com/fenilmodi00/ipo-dashboard/shared"
)

func TestInMemoryFavorites(t *testing.T) {
	favorites := NewInMemoryFavorites()
	ctx := context.Background()

	for _, id := range []string{"b", "a", "b"} {
		if err := favorites.Add(ctx, "user-1", id); err != nil {
			t.Fatalf("Add(%s): %v", id, err)
		}
	}

	list, err := favorites.List(ctx, "user-1")
	if err != nil || len(list) != 2 || list[0] != "a" || list[1] != "b" {
		t.Errorf("List = %v, %v", list, err)
	}
	if ok, _ := favorites.Contains(ctx, "user-1", "a"); !ok {
		t.Error("Contains(a) = false")
	}
	if ok, _ := favorites.Contains(ctx, "user-2", "a"); ok {
		t.Error("favorites leaked across users")
	}

	if err := favorites.Remove(ctx, "user-1", "a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := favorites.Remove(ctx, "user-1", "missing"); err != nil {
		t.Errorf("removing a missing favorite should succeed, got %v", err)
	}
	if list, _ := favorites.List(ctx, "user-1"); len(list) != 1 {
		t.Errorf("List after remove = %v", list)
	}
}

func TestValidateFavoriteKey(t *testing.T) {
	if err := ValidateFavoriteKey("user", "ipo"); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
	for _, pair := range [][2]string{{"", "ipo"}, {"user", " "}} {
		err := ValidateFavoriteKey(pair[0], pair[1])
		if !shared.IsCategory(err, shared.ErrorCategoryValidation) {
			t.Errorf("ValidateFavoriteKey(%q, %q) = %v", pair[0], pair[1], err)
		}
	}
	if err := NewInMemoryFavorites().Add(context.Background(), "", "x"); err == nil {
		t.Error("Add should validate its key")
	}
}
