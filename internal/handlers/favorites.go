package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mmhmddd/linah-store-server/internal/models"
)

type addToFavoritesRequest struct {
	BookID string `json:"bookId" binding:"required"`
}

func GetFavorites(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		store := resolveFavoritesStore(c, db, jwtSecret)
		items, err := store.Items(ctx)
		if err == errUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		if err != nil {
			log.Println("[FAVORITES] [ERROR] load favorites failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load favorites"})
			return
		}

		populated, err := populateFavorites(ctx, db, items)
		if err != nil {
			log.Println("[FAVORITES] [ERROR] populate favorites failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load favorites"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"favorites": populated})
	}
}

func AddToFavorites(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addToFavoritesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid bookId"})
			return
		}

		bookID, err := primitive.ObjectIDFromHex(req.BookID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid bookId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// Book existence is only validated on add; get and remove tolerate
		// stale references.
		var book models.Book
		if err := db.Collection("books").FindOne(ctx, bson.M{"_id": bookID}).Decode(&book); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Book not found"})
			return
		}

		store := resolveFavoritesStore(c, db, jwtSecret)
		items, err := store.Items(ctx)
		if err == errUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		if err != nil {
			log.Println("[FAVORITES] [ERROR] load favorites failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		updated, isAdded := addFavorite(items, bookID)
		if isAdded {
			if err := store.Replace(ctx, updated); err != nil {
				log.Println("[FAVORITES] [ERROR] save favorites failed:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
				return
			}
		}

		populated, err := populateFavorites(ctx, db, updated)
		if err != nil {
			log.Println("[FAVORITES] [ERROR] populate favorites failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		message := "Added to favorites successfully"
		if !isAdded {
			message = "Already in favorites"
		}

		log.Println("[FAVORITES] [INFO] add to favorites:", bookID.Hex(), "added:", isAdded)
		c.JSON(http.StatusOK, gin.H{
			"message":   message,
			"isAdded":   isAdded,
			"favorites": populated,
		})
	}
}

func RemoveFromFavorites(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, err := primitive.ObjectIDFromHex(c.Param("bookId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid bookId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		store := resolveFavoritesStore(c, db, jwtSecret)
		items, err := store.Items(ctx)
		if err == errUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		if err != nil {
			log.Println("[FAVORITES] [ERROR] load favorites failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		// Removing an absent book is not an error; the flag reports it.
		remaining, isRemoved := removeFavorite(items, bookID)
		if isRemoved {
			if err := store.Replace(ctx, remaining); err != nil {
				log.Println("[FAVORITES] [ERROR] save favorites failed:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
				return
			}
		}

		populated, err := populateFavorites(ctx, db, remaining)
		if err != nil {
			log.Println("[FAVORITES] [ERROR] populate favorites failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		message := "Removed from favorites successfully"
		if !isRemoved {
			message = "Not in favorites"
		}

		log.Println("[FAVORITES] [INFO] remove from favorites:", bookID.Hex(), "removed:", isRemoved)
		c.JSON(http.StatusOK, gin.H{
			"message":   message,
			"isRemoved": isRemoved,
			"favorites": populated,
		})
	}
}

func ClearFavorites(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		store := resolveFavoritesStore(c, db, jwtSecret)
		if err := store.Replace(ctx, []models.FavoriteItem{}); err != nil {
			if err == errUserNotFound {
				c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			log.Println("[FAVORITES] [ERROR] clear favorites failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		log.Println("[FAVORITES] [INFO] favorites cleared")
		c.JSON(http.StatusOK, gin.H{"message": "Favorites cleared successfully", "favorites": []populatedFavoriteItem{}})
	}
}
