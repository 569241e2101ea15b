package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// CartItem is a single cart entry: a book reference plus quantity. The cart
// holds at most one entry per book; repeated adds merge into the quantity.
type CartItem struct {
	Book     primitive.ObjectID `bson:"book" json:"book"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// FavoriteItem is a single favorites entry, a bare book reference.
type FavoriteItem struct {
	Book primitive.ObjectID `bson:"book" json:"book"`
}

// User represents the application user account. The cart and favorites lists
// are embedded and exclusively owned; orders holds weak references into the
// orders collection.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"password" json:"-"`
	Phone        string               `bson:"phone" json:"phone"`
	Address      string               `bson:"address" json:"address"`
	Age          int                  `bson:"age" json:"age"`
	Role         string               `bson:"role" json:"role"`
	Orders       []primitive.ObjectID `bson:"orders" json:"orders"`
	Cart         []CartItem           `bson:"cart" json:"cart"`
	Favorites    []FavoriteItem       `bson:"favorites" json:"favorites"`

	ResetPasswordToken  string     `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire *time.Time `bson:"resetPasswordExpire,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
