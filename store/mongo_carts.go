package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/models"
)

// MongoCartStore keeps one cart document per user and upserts the whole
// snapshot on save, mirroring how the browser copy is replaced wholesale.
type MongoCartStore struct {
	col *mongo.Collection
}

func NewMongoCartStore(col *mongo.Collection) *MongoCartStore {
	return &MongoCartStore{col: col}
}

// Load returns the user's cart, or a fresh empty one if none is stored yet.
func (s *MongoCartStore) Load(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := s.col.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &models.Cart{
				UserID:   userID,
				Items:    []models.CartItem{},
				Wishlist: []primitive.ObjectID{},
			}, nil
		}
		return nil, err
	}
	return &cart, nil
}

func (s *MongoCartStore) Save(ctx context.Context, c *models.Cart) error {
	c.UpdatedAt = time.Now()
	opts := options.Update().SetUpsert(true)
	_, err := s.col.UpdateOne(ctx,
		bson.M{"userId": c.UserID},
		bson.M{"$set": bson.M{
			"userId":    c.UserID,
			"items":     c.Items,
			"wishlist":  c.Wishlist,
			"updatedAt": c.UpdatedAt,
		}},
		opts,
	)
	return err
}

// RemoveItems drops the given products from the cart after checkout.
func (s *MongoCartStore) RemoveItems(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"productId": bson.M{"$in": productIDs}}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	return err
}
