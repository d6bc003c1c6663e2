package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name" binding:"required"`
	Description    string             `bson:"description" json:"description" binding:"required"`
	Price          float64            `bson:"price" json:"price" binding:"required,gte=0"`
	Stock          int                `bson:"stock" json:"stock" binding:"gte=0"`
	CategoryID     primitive.ObjectID `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	Images         []Image            `bson:"images,omitempty" json:"images,omitempty"`
	Rating         float64            `bson:"rating" json:"rating"`
	NumReviews     int                `bson:"numReviews" json:"numReviews"`
	Specifications []Specification    `bson:"specifications,omitempty" json:"specifications,omitempty"`
	Tags           []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	IsFeatured     bool               `bson:"isFeatured" json:"isFeatured"`
	Reviews        []Review           `bson:"reviews,omitempty" json:"reviews,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Image struct {
	URL string `bson:"url" json:"url"`
	Alt string `bson:"alt,omitempty" json:"alt,omitempty"`
}

type Specification struct {
	Name  string `bson:"name" json:"name"`
	Value string `bson:"value" json:"value"`
}

type Review struct {
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	UserName  string             `bson:"userName" json:"userName"`
	Rating    float64            `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
