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
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mmhmddd/linah-store-server/internal/models"
)

type offerRequest struct {
	Offer *float64 `json:"offer" binding:"required"`
}

type stockRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func GetAllBooks(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("books").Find(ctx, bson.M{}, findOptions)
		if err != nil {
			log.Println("[BOOK] [ERROR] list books failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching books: " + err.Error()})
			return
		}
		defer cursor.Close(ctx)

		books := make([]models.Book, 0)
		if err := cursor.All(ctx, &books); err != nil {
			log.Println("[BOOK] [ERROR] decode books failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching books: " + err.Error()})
			return
		}

		for i := range books {
			books[i].SyncStockStatus()
		}

		c.JSON(http.StatusOK, books)
	}
}

func GetBookByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var book models.Book
		if err := db.Collection("books").FindOne(ctx, bson.M{"_id": bookID}).Decode(&book); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Book not found"})
			return
		}

		book.SyncStockStatus()
		c.JSON(http.StatusOK, book)
	}
}

func AddBook(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		input, err := parseMultipartBookRequest(c)
		if err != nil {
			respondMultipartError(c, err)
			return
		}

		if input.Name == "" || input.Title == "" || input.Category == "" || !input.PriceSet || !input.QuantitySet {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Required fields (name, title, category, price, quantity) are missing"})
			return
		}
		if input.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Price must be a positive number or zero"})
			return
		}
		if input.Quantity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Quantity must be a positive integer or zero"})
			return
		}
		if input.Offer < 0 || input.Offer > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Offer percentage must be between 0 and 100"})
			return
		}

		now := time.Now()
		book := models.Book{
			Name:        input.Name,
			Title:       input.Title,
			Category:    input.Category,
			Imgs:        input.Imgs,
			Code:        input.Code,
			Price:       input.Price,
			Quantity:    input.Quantity,
			Description: input.Description,
			Offer:       input.Offer,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if book.Imgs == nil {
			book.Imgs = []string{}
		}
		book.SyncStockStatus()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("books").InsertOne(ctx, book)
		if err != nil {
			log.Println("[BOOK] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error saving book: " + err.Error()})
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			book.ID = id
		}

		log.Println("[BOOK] [INFO] book added:", book.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"message": "Book added successfully", "book": book})
	}
}

func UpdateBook(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
			return
		}

		input, err := parseMultipartBookRequest(c)
		if err != nil {
			respondMultipartError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var book models.Book
		if err := db.Collection("books").FindOne(ctx, bson.M{"_id": bookID}).Decode(&book); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Book not found"})
			return
		}

		if input.NameSet {
			book.Name = input.Name
		}
		if input.TitleSet {
			book.Title = input.Title
		}
		if input.CategorySet {
			book.Category = input.Category
		}
		if input.CodeSet {
			book.Code = input.Code
		}
		if input.DescriptionSet {
			book.Description = input.Description
		}
		if input.PriceSet {
			if input.Price < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid price"})
				return
			}
			book.Price = input.Price
		}
		if input.QuantitySet {
			if input.Quantity < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid quantity"})
				return
			}
			book.Quantity = input.Quantity
		}
		if input.OfferSet {
			if input.Offer < 0 || input.Offer > 100 {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid offer percentage"})
				return
			}
			book.Offer = input.Offer
		}

		// New uploads replace the image set; the old files are removed from disk.
		if len(input.Imgs) > 0 {
			for _, old := range book.Imgs {
				if err := safeDeleteUpload(old); err != nil {
					log.Println("[BOOK] [WARN] old image delete failed:", err)
				}
			}
			book.Imgs = input.Imgs
		}

		book.UpdatedAt = time.Now()
		book.SyncStockStatus()

		if _, err := db.Collection("books").ReplaceOne(ctx, bson.M{"_id": bookID}, book); err != nil {
			log.Println("[BOOK] [ERROR] update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating book: " + err.Error()})
			return
		}

		log.Println("[BOOK] [INFO] book updated:", bookID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "Book updated successfully", "book": book})
	}
}

func DeleteBook(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var book models.Book
		if err := db.Collection("books").FindOne(ctx, bson.M{"_id": bookID}).Decode(&book); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Book not found"})
			return
		}

		if _, err := db.Collection("books").DeleteOne(ctx, bson.M{"_id": bookID}); err != nil {
			log.Println("[BOOK] [ERROR] delete failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error deleting book: " + err.Error()})
			return
		}

		for _, img := range book.Imgs {
			if err := safeDeleteUpload(img); err != nil {
				log.Println("[BOOK] [WARN] image delete failed:", err)
			}
		}

		log.Println("[BOOK] [INFO] book deleted:", bookID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
	}
}

func AddOfferToBook(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
			return
		}

		var req offerRequest
		if err := c.ShouldBindJSON(&req); err != nil || *req.Offer < 0 || *req.Offer > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid offer percentage"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var book models.Book
		err = db.Collection("books").FindOneAndUpdate(ctx, bson.M{"_id": bookID},
			bson.M{"$set": bson.M{"offer": *req.Offer, "updatedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&book)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Book not found"})
			return
		}

		book.SyncStockStatus()
		log.Println("[BOOK] [INFO] offer updated:", bookID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "Offer added successfully", "book": book})
	}
}

func SetStockStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
			return
		}

		var req stockRequest
		if err := c.ShouldBindJSON(&req); err != nil || *req.Quantity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid quantity"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		update := models.Book{Quantity: *req.Quantity}
		update.SyncStockStatus()

		var book models.Book
		err = db.Collection("books").FindOneAndUpdate(ctx, bson.M{"_id": bookID},
			bson.M{"$set": bson.M{
				"quantity":    *req.Quantity,
				"stockStatus": update.StockStatus,
				"updatedAt":   time.Now(),
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&book)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Book not found"})
			return
		}

		log.Println("[BOOK] [INFO] stock updated:", bookID.Hex(), "quantity:", *req.Quantity)
		c.JSON(http.StatusOK, gin.H{"message": "Stock updated successfully", "book": book})
	}
}
