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

type MongoCategoryStore struct {
	col *mongo.Collection
}

func NewMongoCategoryStore(col *mongo.Collection) *MongoCategoryStore {
	return &MongoCategoryStore{col: col}
}

func (s *MongoCategoryStore) Create(ctx context.Context, c *models.Category) error {
	err := s.col.FindOne(ctx, bson.M{"name": c.Name}).Err()
	if err == nil {
		return ErrCategoryExists
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err = s.col.InsertOne(ctx, c)
	return err
}

func (s *MongoCategoryStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (s *MongoCategoryStore) List(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *MongoCategoryStore) Update(ctx context.Context, c *models.Category) error {
	// Reject renames that collide with another category.
	var existing models.Category
	err := s.col.FindOne(ctx, bson.M{"name": c.Name, "_id": bson.M{"$ne": c.ID}}).Decode(&existing)
	if err == nil {
		return ErrCategoryExists
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	c.UpdatedAt = time.Now()
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": bson.M{
		"name":        c.Name,
		"description": c.Description,
		"image":       c.Image,
		"updatedAt":   c.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *MongoCategoryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
