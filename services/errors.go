package services

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

var ErrEmptyCart = errors.New("order has no items")

// InvalidAddressError lists the shipping address fields that failed
// validation.
type InvalidAddressError struct {
	Fields []string
}

func (e *InvalidAddressError) Error() string {
	return "invalid shipping address: missing " + strings.Join(e.Fields, ", ")
}

// StockShortage describes one line item that could not be fulfilled.
type StockShortage struct {
	ProductID primitive.ObjectID `json:"productId"`
	Name      string             `json:"name"`
	Requested int                `json:"requested"`
	Available int                `json:"available"`
}

// InsufficientStockError reports every short line item of a rejected order.
type InsufficientStockError struct {
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s: requested %d, available %d", s.Name, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// InvalidTransitionError reports an illegal order-status change.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}
