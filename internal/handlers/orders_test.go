package handlers

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mmhmddd/linah-store-server/internal/models"
)

func TestBookDisplayNamePrefersTitle(t *testing.T) {
	book := models.Book{Name: "dune-vol-1", Title: "Dune"}
	if got := bookDisplayName(book); got != "Dune" {
		t.Fatalf("expected Dune, got %s", got)
	}

	book.Title = ""
	if got := bookDisplayName(book); got != "dune-vol-1" {
		t.Fatalf("expected fallback to name, got %s", got)
	}
}

func TestCanAccessOrder(t *testing.T) {
	ownerID := primitive.NewObjectID()
	order := models.Order{User: &ownerID}

	owner := &models.User{ID: ownerID, Role: models.RoleUser}
	if !canAccessOrder(owner, order) {
		t.Fatal("expected owner to access their order")
	}

	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	if !canAccessOrder(admin, order) {
		t.Fatal("expected admin to access any order")
	}

	stranger := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	if canAccessOrder(stranger, order) {
		t.Fatal("expected stranger to be denied")
	}

	guestOrder := models.Order{User: nil}
	if canAccessOrder(stranger, guestOrder) {
		t.Fatal("expected guest orders to be admin-only")
	}
	if !canAccessOrder(admin, guestOrder) {
		t.Fatal("expected admin to access guest orders")
	}
}

func TestOrderErrorMessages(t *testing.T) {
	bookID := primitive.NewObjectID()
	err := bookNotFoundError{BookID: bookID}
	if !strings.Contains(err.Error(), bookID.Hex()) {
		t.Fatalf("expected book id in message, got %s", err.Error())
	}

	stockErr := insufficientStockError{Name: "Dune"}
	if !strings.Contains(stockErr.Error(), "Dune") {
		t.Fatalf("expected book name in message, got %s", stockErr.Error())
	}
}
