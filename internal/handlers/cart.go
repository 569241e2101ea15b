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

type addToCartRequest struct {
	BookID   string `json:"bookId" binding:"required"`
	Quantity int    `json:"quantity"`
}

type updateCartRequest struct {
	BookID   string `json:"bookId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

func GetCart(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		store := resolveCartStore(c, db, jwtSecret)
		items, err := store.Items(ctx)
		if err == errUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		if err != nil {
			log.Println("[CART] [ERROR] load cart failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load cart"})
			return
		}

		populated, err := populateCart(ctx, db, items)
		if err != nil {
			log.Println("[CART] [ERROR] populate cart failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"cart": populated})
	}
}

func AddToCart(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid bookId or quantity"})
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		if req.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid bookId or quantity"})
			return
		}

		bookID, err := primitive.ObjectIDFromHex(req.BookID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid bookId or quantity"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var book models.Book
		if err := db.Collection("books").FindOne(ctx, bson.M{"_id": bookID}).Decode(&book); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Book not found"})
			return
		}

		store := resolveCartStore(c, db, jwtSecret)
		items, err := store.Items(ctx)
		if err == errUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		if err != nil {
			log.Println("[CART] [ERROR] load cart failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		// Pessimistic check against live stock: the entry's resulting total,
		// not just the increment, must fit the book's current quantity.
		merged, newTotal := mergeCartItem(items, bookID, req.Quantity)
		if book.Quantity < newTotal {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient stock"})
			return
		}

		if err := store.Replace(ctx, merged); err != nil {
			log.Println("[CART] [ERROR] save cart failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		populated, err := populateCart(ctx, db, merged)
		if err != nil {
			log.Println("[CART] [ERROR] populate cart failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		log.Println("[CART] [INFO] added to cart:", bookID.Hex())
		c.JSON(http.StatusOK, gin.H{
			"message": "Added to cart successfully",
			"cart":    populated,
		})
	}
}

func UpdateCartItem(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid bookId or quantity"})
			return
		}
		if req.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid bookId or quantity"})
			return
		}

		bookID, err := primitive.ObjectIDFromHex(req.BookID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid bookId or quantity"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var book models.Book
		if err := db.Collection("books").FindOne(ctx, bson.M{"_id": bookID}).Decode(&book); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Book not found"})
			return
		}

		if book.Quantity < req.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient stock"})
			return
		}

		store := resolveCartStore(c, db, jwtSecret)
		items, err := store.Items(ctx)
		if err == errUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		if err != nil {
			log.Println("[CART] [ERROR] load cart failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		updated, found := setCartItemQuantity(items, bookID, req.Quantity)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"message": "Book not in cart"})
			return
		}

		if err := store.Replace(ctx, updated); err != nil {
			log.Println("[CART] [ERROR] save cart failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		populated, err := populateCart(ctx, db, updated)
		if err != nil {
			log.Println("[CART] [ERROR] populate cart failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		log.Println("[CART] [INFO] cart item updated:", bookID.Hex())
		c.JSON(http.StatusOK, gin.H{
			"message": "Cart item updated successfully",
			"cart":    populated,
		})
	}
}

func RemoveFromCart(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, err := primitive.ObjectIDFromHex(c.Param("bookId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid bookId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		store := resolveCartStore(c, db, jwtSecret)
		items, err := store.Items(ctx)
		if err == errUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		if err != nil {
			log.Println("[CART] [ERROR] load cart failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		remaining, found := removeCartItem(items, bookID)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"message": "Book not in cart"})
			return
		}

		if err := store.Replace(ctx, remaining); err != nil {
			log.Println("[CART] [ERROR] save cart failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		populated, err := populateCart(ctx, db, remaining)
		if err != nil {
			log.Println("[CART] [ERROR] populate cart failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		log.Println("[CART] [INFO] removed from cart:", bookID.Hex())
		c.JSON(http.StatusOK, gin.H{
			"message": "Item removed from cart successfully",
			"cart":    populated,
		})
	}
}

func ClearCart(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		store := resolveCartStore(c, db, jwtSecret)
		if err := store.Replace(ctx, []models.CartItem{}); err != nil {
			if err == errUserNotFound {
				c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			log.Println("[CART] [ERROR] clear cart failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		log.Println("[CART] [INFO] cart cleared")
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared successfully", "cart": []populatedCartItem{}})
	}
}
