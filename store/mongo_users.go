package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/models"
)

type MongoUserStore struct {
	col *mongo.Collection
}

func NewMongoUserStore(col *mongo.Collection) *MongoUserStore {
	return &MongoUserStore{col: col}
}

func (s *MongoUserStore) Create(ctx context.Context, u *models.User) error {
	err := s.col.FindOne(ctx, bson.M{"email": u.Email}).Err()
	if err == nil {
		return ErrEmailTaken
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = time.Now()

	_, err = s.col.InsertOne(ctx, u)
	return err
}

func (s *MongoUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// MongoTokenBlacklist stores voided JWTs until their natural expiry.
type MongoTokenBlacklist struct {
	col *mongo.Collection
}

func NewMongoTokenBlacklist(col *mongo.Collection) *MongoTokenBlacklist {
	return &MongoTokenBlacklist{col: col}
}

func (s *MongoTokenBlacklist) Add(ctx context.Context, token string, exp int64) error {
	_, err := s.col.InsertOne(ctx, bson.M{"token": token, "exp": exp})
	return err
}

func (s *MongoTokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	err := s.col.FindOne(ctx, bson.M{"token": token}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}
