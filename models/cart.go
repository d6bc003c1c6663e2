package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart is the persisted copy of a user's cart/wishlist state. Items keep a
// price snapshot taken at add time; the order engine recomputes from live
// prices at checkout, so the snapshot is display-only.
type Cart struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID   `bson:"userId" json:"userId"`
	Items     []CartItem           `bson:"items" json:"items"`
	Wishlist  []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
	AddedAt   time.Time          `bson:"addedAt" json:"addedAt"`
}
