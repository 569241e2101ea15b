package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"

	PaymentMethodCash = "cash"
	PaymentMethodVisa = "visa"
)

// OrderItem holds a book reference plus the quantity and the unit price frozen
// at purchase time. The price is a snapshot, deliberately decoupled from the
// book's current price.
type OrderItem struct {
	Book     primitive.ObjectID `bson:"book" json:"book"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
}

// Order defines the persisted order document. User is nil for guest checkout.
type Order struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	User          *primitive.ObjectID `bson:"user" json:"user"`
	Items         []OrderItem         `bson:"items" json:"items"`
	TotalAmount   float64             `bson:"totalAmount" json:"totalAmount"`
	Government    string              `bson:"government" json:"government"`
	FullName      string              `bson:"fullName" json:"fullName"`
	Address       string              `bson:"address" json:"address"`
	PaymentMethod string              `bson:"paymentMethod" json:"paymentMethod"`
	SaleCode      string              `bson:"saleCode,omitempty" json:"saleCode,omitempty"`
	Notes         string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Status        string              `bson:"status" json:"status"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func ValidPaymentMethod(method string) bool {
	return method == PaymentMethodCash || method == PaymentMethodVisa
}
