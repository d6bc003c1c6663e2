package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
	"storefront/store"
)

func (h *Handler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product payload"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	product.ID = primitive.NilObjectID
	product.Rating = 0
	product.NumReviews = 0
	product.Reviews = nil

	if err := h.products.Create(ctx, &product); err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateCatalogCache(ctx)
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "product": product})
}

func (h *Handler) ListProductsAdmin(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, limit := parsePagination(c)
	products, total, err := h.products.List(ctx, store.ListProductsParams{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    total,
	})
}

// UpdateProduct applies a partial update; it is also the admin restock path.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var body struct {
		Name           *string                `json:"name"`
		Description    *string                `json:"description"`
		Price          *float64               `json:"price"`
		Stock          *int                   `json:"stock"`
		CategoryID     *string                `json:"categoryId"`
		Images         []models.Image         `json:"images"`
		Specifications []models.Specification `json:"specifications"`
		Tags           []string               `json:"tags"`
		IsFeatured     *bool                  `json:"isFeatured"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.Price != nil && *body.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be non-negative"})
		return
	}
	if body.Stock != nil && *body.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock must be non-negative"})
		return
	}

	params := store.UpdateProductParams{
		Name:           body.Name,
		Description:    body.Description,
		Price:          body.Price,
		Stock:          body.Stock,
		Images:         body.Images,
		Specifications: body.Specifications,
		Tags:           body.Tags,
		IsFeatured:     body.IsFeatured,
	}
	if body.CategoryID != nil {
		catID, err := primitive.ObjectIDFromHex(*body.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}
		params.CategoryID = &catID
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	updated, err := h.products.Update(ctx, id, params)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateCatalogCache(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": updated})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.products.Delete(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateCatalogCache(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted", "id": id.Hex()})
}
