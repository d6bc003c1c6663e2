package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/config"
	"storefront/models"
	"storefront/store"
)

// OrderService is the order engine: it owns placement (stock check and
// decrement, pricing from live product data), payment confirmation, status
// progression and cancellation with stock restore.
type OrderService struct {
	products store.ProductStore
	orders   store.OrderStore
	carts    store.CartStore
	pricing  config.PricingConfig
	validate *validator.Validate
}

// NewOrderService wires the engine. carts may be nil when there is no cart
// to clear after checkout (tests, admin tooling).
func NewOrderService(products store.ProductStore, orders store.OrderStore, carts store.CartStore, pricing config.PricingConfig) *OrderService {
	return &OrderService{
		products: products,
		orders:   orders,
		carts:    carts,
		pricing:  pricing,
		validate: validator.New(),
	}
}

// ItemInput is one requested line of a new order.
type ItemInput struct {
	ProductID primitive.ObjectID
	Quantity  int
}

// PlaceOrder validates the requested items against live stock and prices,
// decrements stock all-or-nothing and persists the order in status pending.
// Client-supplied prices are never trusted; every unit price comes from the
// product document read here.
func (s *OrderService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, items []ItemInput, address models.ShippingAddress, paymentMethod string) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	if err := s.validate.Struct(address); err != nil {
		var verrs validator.ValidationErrors
		addrErr := &InvalidAddressError{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				addrErr.Fields = append(addrErr.Fields, fe.Field())
			}
		}
		return nil, addrErr
	}

	// Merge duplicate lines so a product is checked and decremented once.
	merged := make([]ItemInput, 0, len(items))
	index := make(map[primitive.ObjectID]int, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("quantity for product %s must be positive", item.ProductID.Hex())
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	products := make([]*models.Product, len(merged))
	for i, item := range merged {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		products[i] = product
	}

	// Attempt every conditional decrement so the caller learns about all
	// short items at once, then roll back the successes if any line failed.
	var shortages []StockShortage
	var decremented []ItemInput
	for i, item := range merged {
		err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err == nil {
			decremented = append(decremented, item)
			continue
		}
		if errors.Is(err, store.ErrInsufficientStock) {
			shortages = append(shortages, StockShortage{
				ProductID: item.ProductID,
				Name:      products[i].Name,
				Requested: item.Quantity,
				Available: products[i].Stock,
			})
			continue
		}
		s.rollbackStock(ctx, decremented)
		return nil, err
	}
	if len(shortages) > 0 {
		s.rollbackStock(ctx, decremented)
		return nil, &InsufficientStockError{Shortages: shortages}
	}

	var itemsPrice float64
	orderItems := make([]models.OrderItem, len(merged))
	for i, item := range merged {
		orderItems[i] = models.OrderItem{
			ProductID: item.ProductID,
			Name:      products[i].Name,
			Quantity:  item.Quantity,
			Price:     products[i].Price,
		}
		itemsPrice += products[i].Price * float64(item.Quantity)
	}
	itemsPrice = roundCents(itemsPrice)

	taxPrice := roundCents(itemsPrice * s.pricing.TaxRate)
	shippingPrice := s.pricing.ShippingFee
	if itemsPrice >= s.pricing.FreeShippingMin {
		shippingPrice = 0
	}

	order := &models.Order{
		UserID:          userID,
		Items:           orderItems,
		ShippingAddress: address,
		PaymentMethod:   paymentMethod,
		ItemsPrice:      itemsPrice,
		TaxPrice:        taxPrice,
		ShippingPrice:   shippingPrice,
		TotalPrice:      roundCents(itemsPrice + taxPrice + shippingPrice),
		Status:          models.OrderPending,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.rollbackStock(ctx, decremented)
		return nil, err
	}

	if s.carts != nil {
		ids := make([]primitive.ObjectID, len(merged))
		for i, item := range merged {
			ids[i] = item.ProductID
		}
		if err := s.carts.RemoveItems(ctx, userID, ids); err != nil {
			log.Printf("order %s: failed to clear cart items: %v", order.ID.Hex(), err)
		}
	}

	return order, nil
}

// PayOrder records the payment confirmation and moves pending -> processing.
// Any other starting status is an illegal transition, including a repeat pay.
func (s *OrderService) PayOrder(ctx context.Context, orderID, userID primitive.ObjectID, isAdmin bool, result models.PaymentResult) (*models.Order, error) {
	order, err := s.getOwned(ctx, orderID, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(models.OrderProcessing) {
		return nil, &InvalidTransitionError{From: order.Status, To: models.OrderProcessing}
	}

	err = s.orders.TransitionStatus(ctx, orderID, store.StatusUpdate{
		From:          order.Status,
		To:            models.OrderProcessing,
		PaymentResult: &result,
	})
	if err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, orderID)
}

// UpdateStatus applies an admin-driven transition. Moving to cancelled via
// this path restores stock the same way CancelOrder does.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("unknown order status %q", next)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, &InvalidTransitionError{From: order.Status, To: next}
	}

	err = s.orders.TransitionStatus(ctx, orderID, store.StatusUpdate{
		From:          order.Status,
		To:            next,
		MarkDelivered: next == models.OrderDelivered,
	})
	if err != nil {
		return nil, err
	}

	if next == models.OrderCancelled {
		s.restoreOrderStock(ctx, order)
	}
	return s.orders.GetByID(ctx, orderID)
}

// CancelOrder cancels on behalf of the buyer. Only pending and processing
// orders qualify; shipped goods need the admin status endpoint. Stock is
// restored exactly once: the guarded status write decides the winner when
// cancellations race.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID primitive.ObjectID, isAdmin bool) (*models.Order, error) {
	order, err := s.getOwned(ctx, orderID, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderPending && order.Status != models.OrderProcessing {
		return nil, &InvalidTransitionError{From: order.Status, To: models.OrderCancelled}
	}

	err = s.orders.TransitionStatus(ctx, orderID, store.StatusUpdate{
		From: order.Status,
		To:   models.OrderCancelled,
	})
	if err != nil {
		return nil, err
	}

	s.restoreOrderStock(ctx, order)
	return s.orders.GetByID(ctx, orderID)
}

// GetOrder fetches an order, hiding other users' orders from non-admins.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID primitive.ObjectID, isAdmin bool) (*models.Order, error) {
	return s.getOwned(ctx, orderID, userID, isAdmin)
}

func (s *OrderService) getOwned(ctx context.Context, orderID, userID primitive.ObjectID, isAdmin bool) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, store.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) rollbackStock(ctx context.Context, items []ItemInput) {
	for _, item := range items {
		if err := s.products.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("stock rollback failed for product %s (+%d): %v", item.ProductID.Hex(), item.Quantity, err)
		}
	}
}

func (s *OrderService) restoreOrderStock(ctx context.Context, order *models.Order) {
	for _, item := range order.Items {
		if err := s.products.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("order %s: stock restore failed for product %s (+%d): %v", order.ID.Hex(), item.ProductID.Hex(), item.Quantity, err)
		}
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
