package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
	"storefront/services"
)

// CreateOrder turns the submitted line items into an order. Quantities and
// product ids come from the client; prices and stock checks do not.
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	var body struct {
		OrderItems []struct {
			Product  string `json:"product" binding:"required"`
			Quantity int    `json:"quantity" binding:"required,gt=0"`
		} `json:"orderItems"`
		ShippingAddress models.ShippingAddress `json:"shippingAddress"`
		PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	items := make([]services.ItemInput, 0, len(body.OrderItems))
	for _, line := range body.OrderItems {
		productID, err := primitive.ObjectIDFromHex(line.Product)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id in orderItems"})
			return
		}
		items = append(items, services.ItemInput{ProductID: productID, Quantity: line.Quantity})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.orders.PlaceOrder(ctx, userID, items, body.ShippingAddress, body.PaymentMethod)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateCatalogCache(ctx)
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed", "order": order})
}

func (h *Handler) GetMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := h.orderStore.ListByUser(ctx, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": orders})
}

func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orders.GetOrder(ctx, orderID, userID, isAdmin(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": order})
}

// PayOrder records the payment confirmation payload and moves the order
// from pending to processing.
func (h *Handler) PayOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var body struct {
		TransactionID string `json:"transactionId" binding:"required"`
		Status        string `json:"status" binding:"required"`
		Email         string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment payload"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.orders.PayOrder(ctx, orderID, userID, isAdmin(c), models.PaymentResult{
		TransactionID: body.TransactionID,
		Status:        body.Status,
		Email:         body.Email,
		PaidAt:        time.Now(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order paid", "data": order})
}

// CancelOrder cancels the caller's own order and restores its stock.
func (h *Handler) CancelOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.orders.CancelOrder(ctx, orderID, userID, isAdmin(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateCatalogCache(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "data": order})
}
