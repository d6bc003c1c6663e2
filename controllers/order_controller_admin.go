package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

func (h *Handler) ListOrdersAdmin(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := h.orderStore.List(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": orders})
}

func (h *Handler) GetOrderAdmin(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orderStore.GetByID(ctx, orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": order})
}

// UpdateOrderStatus drives the admin side of the state machine. Illegal
// jumps and anything out of a terminal state are rejected.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var body struct {
		OrderStatus string `json:"orderStatus" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	next := models.OrderStatus(body.OrderStatus)
	if !next.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.orders.UpdateStatus(ctx, orderID, next)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if next == models.OrderCancelled {
		h.invalidateCatalogCache(ctx)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "data": order})
}

// CancelOrderAdmin cancels any user's pending or processing order.
func (h *Handler) CancelOrderAdmin(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.orders.CancelOrder(ctx, orderID, primitive.NilObjectID, true)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateCatalogCache(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "data": order})
}
