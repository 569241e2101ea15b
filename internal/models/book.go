package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StockStatusIn  = "inStock"
	StockStatusOut = "outOfStock"
)

// Book is the persisted catalog document.
type Book struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Title       string             `bson:"title" json:"title"`
	Category    string             `bson:"category" json:"category"`
	Imgs        []string           `bson:"imgs" json:"imgs"`
	Code        string             `bson:"code" json:"code"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Description string             `bson:"description" json:"description"`
	Offer       float64            `bson:"offer" json:"offer"`
	StockStatus string             `bson:"stockStatus" json:"stockStatus"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SyncStockStatus recomputes the derived stockStatus from quantity. Every
// write path must call this before persisting; stockStatus is never accepted
// from request input.
func (b *Book) SyncStockStatus() {
	if b.Quantity > 0 {
		b.StockStatus = StockStatusIn
	} else {
		b.StockStatus = StockStatusOut
	}
}
