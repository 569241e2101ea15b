package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mmhmddd/linah-store-server/internal/middleware"
	"github.com/mmhmddd/linah-store-server/internal/models"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	Book     string `json:"book" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	Government    string                   `json:"government"`
	FullName      string                   `json:"fullName"`
	Address       string                   `json:"address"`
	PaymentMethod string                   `json:"paymentMethod"`
	SaleCode      string                   `json:"saleCode"`
	Notes         string                   `json:"notes"`
	Items         []createOrderItemRequest `json:"items"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type updateOrderRequest struct {
	Government    *string `json:"government"`
	FullName      *string `json:"fullName"`
	Address       *string `json:"address"`
	PaymentMethod *string `json:"paymentMethod"`
	SaleCode      *string `json:"saleCode"`
	Notes         *string `json:"notes"`
	Status        *string `json:"status"`
}

/* =========================
   DOMAIN ERRORS
========================= */

type bookNotFoundError struct {
	BookID primitive.ObjectID
}

func (e bookNotFoundError) Error() string {
	return "Book not found: " + e.BookID.Hex()
}

type insufficientStockError struct {
	Name string
}

func (e insufficientStockError) Error() string {
	return "Insufficient stock for book: " + e.Name
}

/* =========================
   POPULATED VIEWS
========================= */

type orderBookSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Imgs     []string `json:"imgs"`
	Category string   `json:"category"`
}

type orderUserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type populatedOrderItem struct {
	Book     *orderBookSummary `json:"book"`
	Quantity int               `json:"quantity"`
	Price    float64           `json:"price"`
}

type populatedOrder struct {
	ID            string               `json:"id"`
	User          *orderUserSummary    `json:"user"`
	Items         []populatedOrderItem `json:"items"`
	TotalAmount   float64              `json:"totalAmount"`
	Government    string               `json:"government"`
	FullName      string               `json:"fullName"`
	Address       string               `json:"address"`
	PaymentMethod string               `json:"paymentMethod"`
	SaleCode      string               `json:"saleCode,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	Status        string               `json:"status"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// populateOrder assembles the joined order view: each item's book reference is
// replaced with the book's current summary fields, while the item keeps the
// price snapshot taken at purchase time. Items whose book disappeared keep a
// nil book, matching how the cart tolerates stale references.
func populateOrder(ctx context.Context, db *mongo.Database, order models.Order) (populatedOrder, error) {
	out := populatedOrder{
		ID:            order.ID.Hex(),
		TotalAmount:   order.TotalAmount,
		Government:    order.Government,
		FullName:      order.FullName,
		Address:       order.Address,
		PaymentMethod: order.PaymentMethod,
		SaleCode:      order.SaleCode,
		Notes:         order.Notes,
		Status:        order.Status,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}

	if order.User != nil {
		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"_id": *order.User}).Decode(&user)
		if err == nil {
			out.User = &orderUserSummary{ID: user.ID.Hex(), Name: user.Name, Email: user.Email}
		} else if err != mongo.ErrNoDocuments {
			return populatedOrder{}, err
		}
	}

	out.Items = make([]populatedOrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		populated := populatedOrderItem{Quantity: item.Quantity, Price: item.Price}

		var book models.Book
		err := db.Collection("books").FindOne(ctx, bson.M{"_id": item.Book}).Decode(&book)
		if err == nil {
			populated.Book = &orderBookSummary{
				ID:       book.ID.Hex(),
				Name:     book.Name,
				Title:    book.Title,
				Price:    book.Price,
				Imgs:     book.Imgs,
				Category: book.Category,
			}
		} else if err != mongo.ErrNoDocuments {
			return populatedOrder{}, err
		}

		out.Items = append(out.Items, populated)
	}

	return out, nil
}

/* =========================
   STOCK ADJUSTMENT
========================= */

// adjustBookStock applies a quantity delta and recomputes the derived
// stockStatus. Negative deltas are guarded by a conditional filter so the
// quantity can never go below zero, even under concurrent orders.
func adjustBookStock(ctx context.Context, db *mongo.Database, bookID primitive.ObjectID, delta int) error {
	filter := bson.M{"_id": bookID}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}

	var book models.Book
	err := db.Collection("books").FindOneAndUpdate(ctx, filter,
		bson.M{"$inc": bson.M{"quantity": delta}, "$set": bson.M{"updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return mongo.ErrNoDocuments
	}
	if err != nil {
		return err
	}

	book.SyncStockStatus()
	_, err = db.Collection("books").UpdateByID(ctx, bookID, bson.M{"$set": bson.M{"stockStatus": book.StockStatus}})
	return err
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		if err := validateOrderShipping(orderShipping{
			Government:    req.Government,
			FullName:      req.FullName,
			Address:       req.Address,
			PaymentMethod: req.PaymentMethod,
		}); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		code := strings.TrimSpace(req.SaleCode)
		if _, err := applySaleCode(0, code); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		userID := middleware.UserIDFromRequest(c, jwtSecret)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		// Resolve the item source: explicit items, or the caller's cart.
		// Guest checkout without explicit items has no cart to draw from.
		var items []models.CartItem
		fromCart := len(req.Items) == 0
		if fromCart {
			if userID == nil {
				c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			var user models.User
			if err := db.Collection("users").FindOne(ctx, bson.M{"_id": *userID}).Decode(&user); err != nil {
				c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			items = user.Cart
		} else {
			for _, item := range req.Items {
				bookID, err := primitive.ObjectIDFromHex(item.Book)
				if err != nil {
					respondWithError(c, http.StatusBadRequest, route, "invalid book id")
					return
				}
				if item.Quantity < 1 {
					respondWithError(c, http.StatusBadRequest, route, "quantity must be greater than zero")
					return
				}
				items = append(items, models.CartItem{Book: bookID, Quantity: item.Quantity})
			}
		}

		if len(items) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "Cart/Items is empty")
			return
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		// The order insert, the guarded per-book decrements, the cart clear
		// and the user order link all commit or roll back together.
		var order models.Order
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			orderItems := make([]models.OrderItem, 0, len(items))
			total := 0.0

			for _, item := range items {
				var book models.Book
				err := db.Collection("books").FindOne(sessCtx, bson.M{"_id": item.Book}).Decode(&book)
				if err == mongo.ErrNoDocuments {
					return nil, bookNotFoundError{BookID: item.Book}
				}
				if err != nil {
					return nil, err
				}

				if book.Quantity < item.Quantity {
					return nil, insufficientStockError{Name: bookDisplayName(book)}
				}

				// The book's current price becomes the frozen snapshot.
				orderItems = append(orderItems, models.OrderItem{
					Book:     item.Book,
					Quantity: item.Quantity,
					Price:    book.Price,
				})
				total += book.Price * float64(item.Quantity)

				if err := adjustBookStock(sessCtx, db, item.Book, -item.Quantity); err != nil {
					if err == mongo.ErrNoDocuments {
						return nil, insufficientStockError{Name: bookDisplayName(book)}
					}
					return nil, err
				}
			}

			total, err := applySaleCode(total, code)
			if err != nil {
				return nil, err
			}

			now := time.Now()
			order = models.Order{
				User:          userID,
				Items:         orderItems,
				TotalAmount:   total,
				Government:    strings.TrimSpace(req.Government),
				FullName:      strings.TrimSpace(req.FullName),
				Address:       strings.TrimSpace(req.Address),
				PaymentMethod: req.PaymentMethod,
				SaleCode:      code,
				Notes:         strings.TrimSpace(req.Notes),
				Status:        models.OrderStatusPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			}

			res, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				order.ID = id
			}

			if fromCart && userID != nil {
				_, err = db.Collection("users").UpdateByID(sessCtx, *userID, bson.M{
					"$set":  bson.M{"cart": []models.CartItem{}, "updatedAt": now},
					"$push": bson.M{"orders": order.ID},
				})
				if err != nil {
					return nil, err
				}
			}

			return nil, nil
		})
		if err != nil {
			var stockErr insufficientStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusBadRequest, gin.H{"message": stockErr.Error()})
				return
			}
			var notFoundErr bookNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusNotFound, gin.H{"message": notFoundErr.Error()})
				return
			}
			if errors.Is(err, errInvalidSaleCode) {
				c.JSON(http.StatusBadRequest, gin.H{"message": errInvalidSaleCode.Error()})
				return
			}
			log.Println("[ORDER] [ERROR] create order failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		populated, err := populateOrder(ctx, db, order)
		if err != nil {
			log.Println("[ORDER] [ERROR] populate order failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if userID != nil {
			log.Println("[ORDER] [INFO] order created for user:", userID.Hex())
		} else {
			log.Println("[ORDER] [INFO] guest order created")
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Order created successfully",
			"order":   populated,
		})
	}
}

func bookDisplayName(book models.Book) string {
	if book.Title != "" {
		return book.Title
	}
	return book.Name
}

/* =========================
   READ ORDERS
========================= */

func callerUser(ctx context.Context, c *gin.Context, db *mongo.Database, jwtSecret string) *models.User {
	userID := middleware.UserIDFromRequest(c, jwtSecret)
	if userID == nil {
		return nil
	}
	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": *userID}).Decode(&user); err != nil {
		return nil
	}
	return &user
}

func GetAllOrders(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		// Listing requires a verified identity: admins see everything, other
		// users only their own orders.
		caller := callerUser(ctx, c, db, jwtSecret)
		if caller == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
			return
		}

		query := bson.M{}
		if !caller.IsAdmin() {
			query["user"] = caller.ID
		}

		cursor, err := db.Collection("orders").Find(ctx, query,
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			log.Println("[ORDER] [ERROR] list orders failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Orders could not be fetched"})
			return
		}
		defer cursor.Close(ctx)

		var orders []models.Order
		if err := cursor.All(ctx, &orders); err != nil {
			log.Println("[ORDER] [ERROR] decode orders failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to parse orders"})
			return
		}

		populated := make([]populatedOrder, 0, len(orders))
		for _, order := range orders {
			p, err := populateOrder(ctx, db, order)
			if err != nil {
				log.Println("[ORDER] [ERROR] populate order failed:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
				return
			}
			populated = append(populated, p)
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Orders fetched successfully",
			"orders":  populated,
			"count":   len(populated),
		})
	}
}

func GetOrderByID(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}

		caller := callerUser(ctx, c, db, jwtSecret)
		if !canAccessOrder(caller, order) {
			c.JSON(http.StatusForbidden, gin.H{"message": "not authorized"})
			return
		}

		populated, err := populateOrder(ctx, db, order)
		if err != nil {
			log.Println("[ORDER] [ERROR] populate order failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Order fetched successfully", "order": populated})
	}
}

// canAccessOrder grants admins everything and owners their own orders.
func canAccessOrder(caller *models.User, order models.Order) bool {
	if caller == nil {
		return false
	}
	if caller.IsAdmin() {
		return true
	}
	return order.User != nil && *order.User == caller.ID
}

/* =========================
   UPDATE ORDERS
========================= */

func UpdateOrderStatus(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
			return
		}
		if !models.ValidOrderStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status. Must be: pending, delivered, cancelled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}

		caller := callerUser(ctx, c, db, jwtSecret)
		if !canAccessOrder(caller, order) {
			c.JSON(http.StatusForbidden, gin.H{"message": "not authorized"})
			return
		}

		if !allowStatusTransition(order.Status, req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "A delivered order's status cannot be changed"})
			return
		}

		_, err = db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
			"$set": bson.M{"status": req.Status, "updatedAt": time.Now()},
		})
		if err != nil {
			log.Println("[ORDER] [ERROR] status update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		order.Status = req.Status
		populated, err := populateOrder(ctx, db, order)
		if err != nil {
			log.Println("[ORDER] [ERROR] populate order failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		log.Println("[ORDER] [INFO] order status updated:", orderID.Hex(), "->", req.Status)
		c.JSON(http.StatusOK, gin.H{
			"message": "Order status updated to " + req.Status,
			"order":   populated,
		})
	}
}

func UpdateOrder(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
			return
		}

		var req updateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// Editing order details is admin-only.
		caller := callerUser(ctx, c, db, jwtSecret)
		if caller == nil || !caller.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"message": "not authorized"})
			return
		}

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}

		updates := bson.M{}
		if req.Government != nil {
			updates["government"] = strings.TrimSpace(*req.Government)
		}
		if req.FullName != nil {
			updates["fullName"] = strings.TrimSpace(*req.FullName)
		}
		if req.Address != nil {
			updates["address"] = strings.TrimSpace(*req.Address)
		}
		if req.PaymentMethod != nil {
			if !models.ValidPaymentMethod(*req.PaymentMethod) {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Payment method must be cash or visa"})
				return
			}
			updates["paymentMethod"] = *req.PaymentMethod
		}
		if req.SaleCode != nil {
			updates["saleCode"] = strings.TrimSpace(*req.SaleCode)
		}
		if req.Notes != nil {
			updates["notes"] = strings.TrimSpace(*req.Notes)
		}
		if req.Status != nil {
			if !models.ValidOrderStatus(*req.Status) {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status. Must be: pending, delivered, cancelled"})
				return
			}
			updates["status"] = *req.Status
		}

		if len(updates) > 0 {
			updates["updatedAt"] = time.Now()
			if _, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{"$set": updates}); err != nil {
				log.Println("[ORDER] [ERROR] order update failed:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
				return
			}
		}

		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		populated, err := populateOrder(ctx, db, order)
		if err != nil {
			log.Println("[ORDER] [ERROR] populate order failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		log.Println("[ORDER] [INFO] order updated:", orderID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "Order updated successfully", "order": populated})
	}
}

/* =========================
   DELETE ORDER
========================= */

func DeleteOrder(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}

		caller := callerUser(ctx, c, db, jwtSecret)
		if !canAccessOrder(caller, order) {
			c.JSON(http.StatusForbidden, gin.H{"message": "not authorized"})
			return
		}

		session, err := db.Client().StartSession()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		defer session.EndSession(ctx)

		// Stock restore, user unlink and the delete commit together.
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			for _, item := range order.Items {
				if err := adjustBookStock(sessCtx, db, item.Book, item.Quantity); err != nil {
					// A deleted book cannot take its stock back; skip it.
					if err == mongo.ErrNoDocuments {
						log.Println("[ORDER] [WARN] restore skipped, book missing:", item.Book.Hex())
						continue
					}
					return nil, err
				}
			}

			if order.User != nil {
				_, err := db.Collection("users").UpdateByID(sessCtx, *order.User, bson.M{
					"$pull": bson.M{"orders": order.ID},
					"$set":  bson.M{"updatedAt": time.Now()},
				})
				if err != nil {
					return nil, err
				}
			}

			_, err := db.Collection("orders").DeleteOne(sessCtx, bson.M{"_id": order.ID})
			return nil, err
		})
		if err != nil {
			log.Println("[ORDER] [ERROR] delete order failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		log.Println("[ORDER] [INFO] order deleted:", orderID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}
