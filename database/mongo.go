package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo wraps the client and the collection handles the stores work with.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database

	Users      *mongo.Collection
	Products   *mongo.Collection
	Categories *mongo.Collection
	Orders     *mongo.Collection
	Carts      *mongo.Collection
	Blacklist  *mongo.Collection
}

// Connect establishes the MongoDB connection and resolves collections.
func Connect(uri, dbName string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	db := client.Database(dbName)
	return &Mongo{
		Client:     client,
		DB:         db,
		Users:      db.Collection("users"),
		Products:   db.Collection("products"),
		Categories: db.Collection("categories"),
		Orders:     db.Collection("orders"),
		Carts:      db.Collection("carts"),
		Blacklist:  db.Collection("blacklist_tokens"),
	}, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
