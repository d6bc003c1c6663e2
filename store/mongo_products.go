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

type MongoProductStore struct {
	col *mongo.Collection
}

func NewMongoProductStore(col *mongo.Collection) *MongoProductStore {
	return &MongoProductStore{col: col}
}

func (s *MongoProductStore) Create(ctx context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.col.InsertOne(ctx, p)
	return err
}

func (s *MongoProductStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *MongoProductStore) List(ctx context.Context, params ListProductsParams) ([]models.Product, int64, error) {
	filter := bson.M{}

	if params.Search != "" {
		regex := primitive.Regex{Pattern: params.Search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": regex},
			bson.M{"description": regex},
		}
	}
	if params.CategoryID != nil {
		filter["categoryId"] = *params.CategoryID
	}
	if params.MinPrice != nil || params.MaxPrice != nil {
		price := bson.M{}
		if params.MinPrice != nil {
			price["$gte"] = *params.MinPrice
		}
		if params.MaxPrice != nil {
			price["$lte"] = *params.MaxPrice
		}
		filter["price"] = price
	}
	if params.Featured != nil {
		filter["isFeatured"] = *params.Featured
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	var sort bson.D
	switch params.Sort {
	case "price_asc":
		sort = bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		sort = bson.D{{Key: "price", Value: -1}}
	case "rating":
		sort = bson.D{{Key: "rating", Value: -1}}
	case "name":
		sort = bson.D{{Key: "name", Value: 1}}
	default:
		sort = bson.D{{Key: "createdAt", Value: -1}}
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64(params.Offset)).
		SetLimit(int64(params.Limit))

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *MongoProductStore) Update(ctx context.Context, id primitive.ObjectID, params UpdateProductParams) (*models.Product, error) {
	set := bson.M{"updatedAt": time.Now()}
	if params.Name != nil {
		set["name"] = *params.Name
	}
	if params.Description != nil {
		set["description"] = *params.Description
	}
	if params.Price != nil {
		set["price"] = *params.Price
	}
	if params.Stock != nil {
		set["stock"] = *params.Stock
	}
	if params.CategoryID != nil {
		set["categoryId"] = *params.CategoryID
	}
	if params.Images != nil {
		set["images"] = params.Images
	}
	if params.Specifications != nil {
		set["specifications"] = params.Specifications
	}
	if params.Tags != nil {
		set["tags"] = params.Tags
	}
	if params.IsFeatured != nil {
		set["isFeatured"] = *params.IsFeatured
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Product
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (s *MongoProductStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DecrementStock takes qty units off the shelf only when enough remain.
// The floor check and the decrement are a single conditional update, so
// concurrent orders can never jointly drive stock negative.
func (s *MongoProductStore) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Zero matches is either a missing product or a short shelf.
		if err := s.col.FindOne(ctx, bson.M{"_id": id}).Err(); err == mongo.ErrNoDocuments {
			return ErrProductNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

// RestoreStock is the compensating increment for a cancelled order line.
func (s *MongoProductStore) RestoreStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"stock": qty},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

// AddReview appends a review and recomputes the aggregate rating in one
// read-modify-write; ratings are display data, so last-writer-wins is fine.
func (s *MongoProductStore) AddReview(ctx context.Context, id primitive.ObjectID, review models.Review) (*models.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews := append(product.Reviews, review)
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	rating := sum / float64(len(reviews))

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{
		"reviews":    reviews,
		"rating":     rating,
		"numReviews": len(reviews),
		"updatedAt":  time.Now(),
	}}

	var updated models.Product
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &updated, nil
}
