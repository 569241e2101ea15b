package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mmhmddd/linah-store-server/internal/models"
)

func TestMergeCartItemAccumulatesQuantity(t *testing.T) {
	bookID := primitive.NewObjectID()
	items := []models.CartItem{{Book: bookID, Quantity: 2}}

	items, total := mergeCartItem(items, bookID, 3)
	if len(items) != 1 {
		t.Fatalf("expected single cart entry, got %d", len(items))
	}
	if total != 5 || items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got total=%d item=%d", total, items[0].Quantity)
	}
}

func TestMergeCartItemAppendsNewBook(t *testing.T) {
	existing := primitive.NewObjectID()
	added := primitive.NewObjectID()
	items := []models.CartItem{{Book: existing, Quantity: 1}}

	items, total := mergeCartItem(items, added, 2)
	if len(items) != 2 {
		t.Fatalf("expected two cart entries, got %d", len(items))
	}
	if total != 2 {
		t.Fatalf("expected new entry total 2, got %d", total)
	}
}

func TestSetCartItemQuantity(t *testing.T) {
	bookID := primitive.NewObjectID()
	items := []models.CartItem{{Book: bookID, Quantity: 1}}

	items, found := setCartItemQuantity(items, bookID, 7)
	if !found || items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got found=%v quantity=%d", found, items[0].Quantity)
	}

	_, found = setCartItemQuantity(items, primitive.NewObjectID(), 1)
	if found {
		t.Fatal("expected found=false for a book not in the cart")
	}
}

func TestRemoveCartItem(t *testing.T) {
	bookID := primitive.NewObjectID()
	other := primitive.NewObjectID()
	items := []models.CartItem{{Book: bookID, Quantity: 1}, {Book: other, Quantity: 4}}

	items, removed := removeCartItem(items, bookID)
	if !removed || len(items) != 1 || items[0].Book != other {
		t.Fatalf("expected only the other book to remain, got removed=%v items=%v", removed, items)
	}

	items, removed = removeCartItem(items, bookID)
	if removed || len(items) != 1 {
		t.Fatalf("expected second removal to be a no-op, got removed=%v", removed)
	}
}

func TestAddFavoriteIsIdempotent(t *testing.T) {
	bookID := primitive.NewObjectID()

	items, added := addFavorite(nil, bookID)
	if !added || len(items) != 1 {
		t.Fatalf("expected first add to insert, got added=%v len=%d", added, len(items))
	}

	items, added = addFavorite(items, bookID)
	if added || len(items) != 1 {
		t.Fatalf("expected second add to be a no-op, got added=%v len=%d", added, len(items))
	}
}

func TestRemoveFavorite(t *testing.T) {
	bookID := primitive.NewObjectID()
	items := []models.FavoriteItem{{Book: bookID}}

	items, removed := removeFavorite(items, bookID)
	if !removed || len(items) != 0 {
		t.Fatalf("expected favorite removed, got removed=%v len=%d", removed, len(items))
	}

	_, removed = removeFavorite(items, bookID)
	if removed {
		t.Fatal("expected removal of absent favorite to report false")
	}
}
