package handlers

import (
	"context"
	"encoding/gob"
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mmhmddd/linah-store-server/internal/middleware"
	"github.com/mmhmddd/linah-store-server/internal/models"
)

const (
	sessionCartKey      = "cart"
	sessionFavoritesKey = "favorites"
)

var errUserNotFound = errors.New("user not found")

func init() {
	// The cookie session store serializes values with gob.
	gob.Register([]models.CartItem{})
	gob.Register([]models.FavoriteItem{})
}

// cartStore is the single capability the cart handlers are written against.
// The authenticated variant reads and writes the user document's embedded
// cart; the guest variant lives in the caller's cookie-keyed session. Both
// hold an ordered list with at most one entry per book.
type cartStore interface {
	Items(ctx context.Context) ([]models.CartItem, error)
	Replace(ctx context.Context, items []models.CartItem) error
}

// favoritesStore mirrors cartStore for the quantity-less favorites list.
type favoritesStore interface {
	Items(ctx context.Context) ([]models.FavoriteItem, error)
	Replace(ctx context.Context, items []models.FavoriteItem) error
}

type userCartStore struct {
	db     *mongo.Database
	userID primitive.ObjectID
}

func (s userCartStore) Items(ctx context.Context) ([]models.CartItem, error) {
	var user models.User
	err := s.db.Collection("users").FindOne(ctx, bson.M{"_id": s.userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user.Cart, nil
}

func (s userCartStore) Replace(ctx context.Context, items []models.CartItem) error {
	res, err := s.db.Collection("users").UpdateByID(ctx, s.userID, bson.M{
		"$set": bson.M{"cart": items, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errUserNotFound
	}
	return nil
}

type userFavoritesStore struct {
	db     *mongo.Database
	userID primitive.ObjectID
}

func (s userFavoritesStore) Items(ctx context.Context) ([]models.FavoriteItem, error) {
	var user models.User
	err := s.db.Collection("users").FindOne(ctx, bson.M{"_id": s.userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user.Favorites, nil
}

func (s userFavoritesStore) Replace(ctx context.Context, items []models.FavoriteItem) error {
	res, err := s.db.Collection("users").UpdateByID(ctx, s.userID, bson.M{
		"$set": bson.M{"favorites": items, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errUserNotFound
	}
	return nil
}

type sessionCartStore struct {
	session sessions.Session
}

func (s sessionCartStore) Items(context.Context) ([]models.CartItem, error) {
	if items, ok := s.session.Get(sessionCartKey).([]models.CartItem); ok {
		return items, nil
	}
	return nil, nil
}

func (s sessionCartStore) Replace(_ context.Context, items []models.CartItem) error {
	s.session.Set(sessionCartKey, items)
	return s.session.Save()
}

type sessionFavoritesStore struct {
	session sessions.Session
}

func (s sessionFavoritesStore) Items(context.Context) ([]models.FavoriteItem, error) {
	if items, ok := s.session.Get(sessionFavoritesKey).([]models.FavoriteItem); ok {
		return items, nil
	}
	return nil, nil
}

func (s sessionFavoritesStore) Replace(_ context.Context, items []models.FavoriteItem) error {
	s.session.Set(sessionFavoritesKey, items)
	return s.session.Save()
}

// resolveCartStore picks the backend from the caller's identity: the user
// document when a bearer token resolves, the guest session otherwise.
func resolveCartStore(c *gin.Context, db *mongo.Database, secret string) cartStore {
	if userID := middleware.UserIDFromRequest(c, secret); userID != nil {
		return userCartStore{db: db, userID: *userID}
	}
	return sessionCartStore{session: sessions.Default(c)}
}

func resolveFavoritesStore(c *gin.Context, db *mongo.Database, secret string) favoritesStore {
	if userID := middleware.UserIDFromRequest(c, secret); userID != nil {
		return userFavoritesStore{db: db, userID: *userID}
	}
	return sessionFavoritesStore{session: sessions.Default(c)}
}

/* =========================
   LIST OPERATIONS
========================= */

// mergeCartItem upserts an entry, adding the quantity onto an existing entry
// for the same book. Returns the new list and the entry's resulting quantity.
func mergeCartItem(items []models.CartItem, bookID primitive.ObjectID, quantity int) ([]models.CartItem, int) {
	for i := range items {
		if items[i].Book == bookID {
			items[i].Quantity += quantity
			return items, items[i].Quantity
		}
	}
	return append(items, models.CartItem{Book: bookID, Quantity: quantity}), quantity
}

// setCartItemQuantity replaces the quantity of an existing entry. The second
// return is false when the book is not in the list.
func setCartItemQuantity(items []models.CartItem, bookID primitive.ObjectID, quantity int) ([]models.CartItem, bool) {
	for i := range items {
		if items[i].Book == bookID {
			items[i].Quantity = quantity
			return items, true
		}
	}
	return items, false
}

func removeCartItem(items []models.CartItem, bookID primitive.ObjectID) ([]models.CartItem, bool) {
	for i := range items {
		if items[i].Book == bookID {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}

// addFavorite is idempotent: adding a book already in the list is a no-op and
// reports added=false.
func addFavorite(items []models.FavoriteItem, bookID primitive.ObjectID) ([]models.FavoriteItem, bool) {
	for i := range items {
		if items[i].Book == bookID {
			return items, false
		}
	}
	return append(items, models.FavoriteItem{Book: bookID}), true
}

func removeFavorite(items []models.FavoriteItem, bookID primitive.ObjectID) ([]models.FavoriteItem, bool) {
	for i := range items {
		if items[i].Book == bookID {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}

/* =========================
   POPULATED VIEWS
========================= */

type populatedCartItem struct {
	Book     models.Book `json:"book"`
	Quantity int         `json:"quantity"`
}

type populatedFavoriteItem struct {
	Book models.Book `json:"book"`
}

// populateCart joins each entry with its book document. Entries whose book no
// longer exists are dropped silently; the raw list is never mutated.
func populateCart(ctx context.Context, db *mongo.Database, items []models.CartItem) ([]populatedCartItem, error) {
	populated := make([]populatedCartItem, 0, len(items))
	for _, item := range items {
		var book models.Book
		err := db.Collection("books").FindOne(ctx, bson.M{"_id": item.Book}).Decode(&book)
		if err == mongo.ErrNoDocuments {
			log.Println("[CART] [WARN] book not found for id:", item.Book.Hex())
			continue
		}
		if err != nil {
			return nil, err
		}
		book.SyncStockStatus()
		populated = append(populated, populatedCartItem{Book: book, Quantity: item.Quantity})
	}
	return populated, nil
}

func populateFavorites(ctx context.Context, db *mongo.Database, items []models.FavoriteItem) ([]populatedFavoriteItem, error) {
	populated := make([]populatedFavoriteItem, 0, len(items))
	for _, item := range items {
		var book models.Book
		err := db.Collection("books").FindOne(ctx, bson.M{"_id": item.Book}).Decode(&book)
		if err == mongo.ErrNoDocuments {
			log.Println("[FAVORITES] [WARN] book not found for id:", item.Book.Hex())
			continue
		}
		if err != nil {
			return nil, err
		}
		book.SyncStockStatus()
		populated = append(populated, populatedFavoriteItem{Book: book})
	}
	return populated, nil
}
