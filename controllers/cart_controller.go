package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/cart"
)

// AddToCart puts a product in the user's cart, incrementing the quantity if
// it is already there. Stock is not enforced here; checkout is the
// authority and a stale cart simply fails there.
func (h *Handler) AddToCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	var body struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
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

	product, err := h.products.GetByID(ctx, productID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	session, err := cart.Open(ctx, userID, h.carts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := session.AddItem(product, body.Quantity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := session.Flush(ctx); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Added to cart",
		"data": gin.H{
			"productId": productID,
			"quantity":  body.Quantity,
			"product": gin.H{
				"name":  product.Name,
				"price": product.Price,
				"stock": product.Stock,
			},
			"subtotal": float64(body.Quantity) * product.Price,
		},
	})
}

func (h *Handler) GetCart(c *gin.Context) {
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

	items := []gin.H{}
	for _, item := range session.Items() {
		product, err := h.products.GetByID(ctx, item.ProductID)
		if err != nil {
			// Product removed since it was carted; skip the stale entry.
			continue
		}
		items = append(items, gin.H{
			"productId":   item.ProductID,
			"quantity":    item.Quantity,
			"productName": product.Name,
			"price":       product.Price,
			"priceAtAdd":  item.Price,
			"stock":       product.Stock,
			"total":       float64(item.Quantity) * product.Price,
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": items})
}

// UpdateCartItem sets the quantity; zero or less removes the entry.
func (h *Handler) UpdateCartItem(c *gin.Context) {
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

	var body struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	session, err := cart.Open(ctx, userID, h.carts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := session.UpdateQuantity(productID, *body.Quantity); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found in cart"})
			return
		}
		h.respondError(c, err)
		return
	}
	if err := session.Flush(ctx); err != nil {
		h.respondError(c, err)
		return
	}

	if *body.Quantity <= 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Product removed from cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated",
		"data": gin.H{
			"productId": productID,
			"quantity":  *body.Quantity,
		},
	})
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
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
	if err := session.Remove(productID); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found in cart"})
			return
		}
		h.respondError(c, err)
		return
	}
	if err := session.Flush(ctx); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product removed from cart", "productId": productID.Hex()})
}
