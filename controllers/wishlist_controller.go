package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/cart"
	"storefront/models"
)

// AddToWishlist records presence only; quantities belong to the cart.
func (h *Handler) AddToWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	var body struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	productID, err := primitive.ObjectIDFromHex(body.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid productId"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.products.GetByID(ctx, productID); err != nil {
		h.respondError(c, err)
		return
	}

	session, err := cart.Open(ctx, userID, h.carts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	session.AddToWishlist(productID)
	if err := session.Flush(ctx); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Added to wishlist", "productId": productID.Hex()})
}

func (h *Handler) GetWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	session, err := cart.Open(ctx, userID, h.carts)
	if err != nil {
		h.respondError(c, err)
		return
	}

	products := []models.Product{}
	for _, id := range session.Wishlist() {
		product, err := h.products.GetByID(ctx, id)
		if err != nil {
			continue
		}
		products = append(products, *product)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": products})
}

func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid productId"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	session, err := cart.Open(ctx, userID, h.carts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := session.RemoveFromWishlist(productID); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not in wishlist"})
			return
		}
		h.respondError(c, err)
		return
	}
	if err := session.Flush(ctx); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist", "productId": productID.Hex()})
}
