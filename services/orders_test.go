package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/config"
	"storefront/models"
	"storefront/store"
)

// fakeProductStore is an in-memory ProductStore with the same conditional
// decrement contract as the mongo implementation.
type fakeProductStore struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
}

func newFakeProductStore(products ...*models.Product) *fakeProductStore {
	s := &fakeProductStore{products: make(map[primitive.ObjectID]*models.Product)}
	for _, p := range products {
		copied := *p
		s.products[p.ID] = &copied
	}
	return s
}

func (s *fakeProductStore) Create(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	copied := *p
	s.products[p.ID] = &copied
	return nil
}

func (s *fakeProductStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *fakeProductStore) List(ctx context.Context, params store.ListProductsParams) ([]models.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Product{}
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (s *fakeProductStore) Update(ctx context.Context, id primitive.ObjectID, params store.UpdateProductParams) (*models.Product, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeProductStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
	return nil
}

func (s *fakeProductStore) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return store.ErrProductNotFound
	}
	if p.Stock < qty {
		return store.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (s *fakeProductStore) RestoreStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return store.ErrProductNotFound
	}
	p.Stock += qty
	return nil
}

func (s *fakeProductStore) AddReview(ctx context.Context, id primitive.ObjectID, review models.Review) (*models.Product, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeProductStore) stock(t *testing.T, id primitive.ObjectID) int {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	require.True(t, ok, "product must exist")
	return p.Stock
}

// fakeOrderStore keeps orders in memory and enforces the same guarded
// transition semantics as the mongo store.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (s *fakeOrderStore) Create(ctx context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	copied := *o
	s.orders[o.ID] = &copied
	return nil
}

func (s *fakeOrderStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *fakeOrderStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) List(ctx context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *fakeOrderStore) TransitionStatus(ctx context.Context, id primitive.ObjectID, upd store.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return store.ErrOrderNotFound
	}
	if o.Status != upd.From {
		return store.ErrStatusConflict
	}
	o.Status = upd.To
	if upd.PaymentResult != nil {
		o.IsPaid = true
		o.PaymentResult = upd.PaymentResult
	}
	if upd.MarkDelivered {
		o.IsDelivered = true
	}
	return nil
}

// fakeCartStore records which items were cleared after checkout.
type fakeCartStore struct {
	mu      sync.Mutex
	removed []primitive.ObjectID
}

func (s *fakeCartStore) Load(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	return &models.Cart{UserID: userID}, nil
}

func (s *fakeCartStore) Save(ctx context.Context, c *models.Cart) error { return nil }

func (s *fakeCartStore) RemoveItems(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, productIDs...)
	return nil
}

var testPricing = config.PricingConfig{
	TaxRate:         0.10,
	ShippingFee:     10,
	FreeShippingMin: 100,
}

func validAddress() models.ShippingAddress {
	return models.ShippingAddress{
		FullName:   "Ada Lovelace",
		Address:    "12 Analytical Way",
		City:       "London",
		PostalCode: "N1 9GU",
		Country:    "UK",
	}
}

func newTestProduct(name string, price float64, stock int) *models.Product {
	return &models.Product{
		ID:    primitive.NewObjectID(),
		Name:  name,
		Price: price,
		Stock: stock,
	}
}

func TestPlaceOrderComputesTotals(t *testing.T) {
	keyboard := newTestProduct("keyboard", 25.50, 10)
	mouse := newTestProduct("mouse", 9.99, 10)
	products := newFakeProductStore(keyboard, mouse)
	orders := newFakeOrderStore()
	svc := NewOrderService(products, orders, nil, testPricing)

	userID := primitive.NewObjectID()
	order, err := svc.PlaceOrder(context.Background(), userID, []ItemInput{
		{ProductID: keyboard.ID, Quantity: 2},
		{ProductID: mouse.ID, Quantity: 1},
	}, validAddress(), "card")
	require.NoError(t, err)

	assert.Equal(t, 60.99, order.ItemsPrice)
	assert.Equal(t, 6.10, order.TaxPrice)
	assert.Equal(t, 10.0, order.ShippingPrice)
	assert.InDelta(t, order.ItemsPrice+order.TaxPrice+order.ShippingPrice, order.TotalPrice, 0.001)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.False(t, order.IsPaid)

	assert.Equal(t, 8, products.stock(t, keyboard.ID))
	assert.Equal(t, 9, products.stock(t, mouse.ID))
}

func TestPlaceOrderFreeShippingOverThreshold(t *testing.T) {
	monitor := newTestProduct("monitor", 120, 5)
	products := newFakeProductStore(monitor)
	svc := NewOrderService(products, newFakeOrderStore(), nil, testPricing)

	order, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), []ItemInput{
		{ProductID: monitor.ID, Quantity: 1},
	}, validAddress(), "card")
	require.NoError(t, err)

	assert.Equal(t, 0.0, order.ShippingPrice)
	assert.InDelta(t, order.ItemsPrice+order.TaxPrice, order.TotalPrice, 0.001)
}

func TestPlaceOrderUsesLivePricesNotClientPrices(t *testing.T) {
	// The input carries no price fields at all: totals can only come from
	// the product documents.
	widget := newTestProduct("widget", 42, 3)
	products := newFakeProductStore(widget)
	svc := NewOrderService(products, newFakeOrderStore(), nil, testPricing)

	order, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), []ItemInput{
		{ProductID: widget.ID, Quantity: 1},
	}, validAddress(), "card")
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 42.0, order.Items[0].Price)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	widget := newTestProduct("widget", 5, 3)
	products := newFakeProductStore(widget)
	orders := newFakeOrderStore()
	svc := NewOrderService(products, orders, nil, testPricing)

	_, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), nil, validAddress(), "card")
	assert.ErrorIs(t, err, ErrEmptyCart)

	assert.Equal(t, 3, products.stock(t, widget.ID))
	all, _ := orders.List(context.Background())
	assert.Empty(t, all)
}

func TestPlaceOrderInvalidAddress(t *testing.T) {
	widget := newTestProduct("widget", 5, 3)
	products := newFakeProductStore(widget)
	svc := NewOrderService(products, newFakeOrderStore(), nil, testPricing)

	addr := validAddress()
	addr.City = ""
	addr.Country = ""

	_, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), []ItemInput{
		{ProductID: widget.ID, Quantity: 1},
	}, addr, "card")

	var addrErr *InvalidAddressError
	require.ErrorAs(t, err, &addrErr)
	assert.ElementsMatch(t, []string{"City", "Country"}, addrErr.Fields)
	assert.Equal(t, 3, products.stock(t, widget.ID))
}

func TestPlaceOrderInsufficientStockAllOrNothing(t *testing.T) {
	plenty := newTestProduct("plenty", 10, 100)
	scarce := newTestProduct("scarce", 10, 1)
	products := newFakeProductStore(plenty, scarce)
	orders := newFakeOrderStore()
	svc := NewOrderService(products, orders, nil, testPricing)

	_, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), []ItemInput{
		{ProductID: plenty.ID, Quantity: 5},
		{ProductID: scarce.ID, Quantity: 3},
	}, validAddress(), "card")

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortages, 1)
	assert.Equal(t, scarce.ID, stockErr.Shortages[0].ProductID)
	assert.Equal(t, 3, stockErr.Shortages[0].Requested)
	assert.Equal(t, 1, stockErr.Shortages[0].Available)

	// The successful decrement on plenty must have been rolled back.
	assert.Equal(t, 100, products.stock(t, plenty.ID))
	assert.Equal(t, 1, products.stock(t, scarce.ID))
	all, _ := orders.List(context.Background())
	assert.Empty(t, all)
}

func TestPlaceOrderReportsEveryShortItem(t *testing.T) {
	a := newTestProduct("a", 10, 1)
	b := newTestProduct("b", 10, 2)
	products := newFakeProductStore(a, b)
	svc := NewOrderService(products, newFakeOrderStore(), nil, testPricing)

	_, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), []ItemInput{
		{ProductID: a.ID, Quantity: 5},
		{ProductID: b.ID, Quantity: 5},
	}, validAddress(), "card")

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Len(t, stockErr.Shortages, 2)
}

func TestPlaceOrderMergesDuplicateLines(t *testing.T) {
	widget := newTestProduct("widget", 10, 10)
	products := newFakeProductStore(widget)
	svc := NewOrderService(products, newFakeOrderStore(), nil, testPricing)

	order, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), []ItemInput{
		{ProductID: widget.ID, Quantity: 2},
		{ProductID: widget.ID, Quantity: 3},
	}, validAddress(), "card")
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 5, order.Items[0].Quantity)
	assert.Equal(t, 5, products.stock(t, widget.ID))
}

func TestPlaceOrderRejectsNonPositiveQuantity(t *testing.T) {
	widget := newTestProduct("widget", 10, 10)
	products := newFakeProductStore(widget)
	svc := NewOrderService(products, newFakeOrderStore(), nil, testPricing)

	_, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), []ItemInput{
		{ProductID: widget.ID, Quantity: 0},
	}, validAddress(), "card")
	assert.Error(t, err)
	assert.Equal(t, 10, products.stock(t, widget.ID))
}

func TestPlaceOrderClearsPurchasedItemsFromCart(t *testing.T) {
	widget := newTestProduct("widget", 10, 10)
	products := newFakeProductStore(widget)
	carts := &fakeCartStore{}
	svc := NewOrderService(products, newFakeOrderStore(), carts, testPricing)

	_, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), []ItemInput{
		{ProductID: widget.ID, Quantity: 1},
	}, validAddress(), "card")
	require.NoError(t, err)

	assert.Equal(t, []primitive.ObjectID{widget.ID}, carts.removed)
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	// stock=5, two simultaneous orders of 3: exactly one may win.
	widget := newTestProduct("widget", 10, 5)
	products := newFakeProductStore(widget)
	orders := newFakeOrderStore()
	svc := NewOrderService(products, orders, nil, testPricing)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), []ItemInput{
				{ProductID: widget.ID, Quantity: 3},
			}, validAddress(), "card")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, failures int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		failures++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)
	assert.Equal(t, 2, products.stock(t, widget.ID))
}

func TestCancelRoundTripsStock(t *testing.T) {
	widget := newTestProduct("widget", 10, 7)
	products := newFakeProductStore(widget)
	orders := newFakeOrderStore()
	svc := NewOrderService(products, orders, nil, testPricing)

	userID := primitive.NewObjectID()
	order, err := svc.PlaceOrder(context.Background(), userID, []ItemInput{
		{ProductID: widget.ID, Quantity: 4},
	}, validAddress(), "card")
	require.NoError(t, err)
	require.Equal(t, 3, products.stock(t, widget.ID))

	cancelled, err := svc.CancelOrder(context.Background(), order.ID, userID, false)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.Equal(t, 7, products.stock(t, widget.ID))
}

func TestDoubleCancelRestoresOnce(t *testing.T) {
	widget := newTestProduct("widget", 10, 7)
	products := newFakeProductStore(widget)
	orders := newFakeOrderStore()
	svc := NewOrderService(products, orders, nil, testPricing)

	userID := primitive.NewObjectID()
	order, err := svc.PlaceOrder(context.Background(), userID, []ItemInput{
		{ProductID: widget.ID, Quantity: 2},
	}, validAddress(), "card")
	require.NoError(t, err)

	_, err = svc.CancelOrder(context.Background(), order.ID, userID, false)
	require.NoError(t, err)

	_, err = svc.CancelOrder(context.Background(), order.ID, userID, false)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.OrderCancelled, transitionErr.From)

	assert.Equal(t, 7, products.stock(t, widget.ID))
}

func TestCancelRejectedAfterShipping(t *testing.T) {
	widget := newTestProduct("widget", 10, 7)
	products := newFakeProductStore(widget)
	orders := newFakeOrderStore()
	svc := NewOrderService(products, orders, nil, testPricing)

	userID := primitive.NewObjectID()
	order, err := svc.PlaceOrder(context.Background(), userID, []ItemInput{
		{ProductID: widget.ID, Quantity: 1},
	}, validAddress(), "card")
	require.NoError(t, err)

	_, err = svc.PayOrder(context.Background(), order.ID, userID, false, models.PaymentResult{TransactionID: "tx1", Status: "completed"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), order.ID, models.OrderShipped)
	require.NoError(t, err)

	_, err = svc.CancelOrder(context.Background(), order.ID, userID, false)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.OrderShipped, transitionErr.From)
	assert.Equal(t, 6, products.stock(t, widget.ID))
}

func TestPayOrderMovesPendingToProcessing(t *testing.T) {
	widget := newTestProduct("widget", 10, 7)
	products := newFakeProductStore(widget)
	orders := newFakeOrderStore()
	svc := NewOrderService(products, orders, nil, testPricing)

	userID := primitive.NewObjectID()
	order, err := svc.PlaceOrder(context.Background(), userID, []ItemInput{
		{ProductID: widget.ID, Quantity: 1},
	}, validAddress(), "card")
	require.NoError(t, err)

	paid, err := svc.PayOrder(context.Background(), order.ID, userID, false, models.PaymentResult{TransactionID: "tx1", Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, paid.Status)
	assert.True(t, paid.IsPaid)

	// A repeat pay is an illegal transition, not a silent no-op.
	_, err = svc.PayOrder(context.Background(), order.ID, userID, false, models.PaymentResult{TransactionID: "tx2", Status: "completed"})
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
}

func TestAdminStatusProgression(t *testing.T) {
	widget := newTestProduct("widget", 10, 7)
	products := newFakeProductStore(widget)
	orders := newFakeOrderStore()
	svc := NewOrderService(products, orders, nil, testPricing)

	userID := primitive.NewObjectID()
	order, err := svc.PlaceOrder(context.Background(), userID, []ItemInput{
		{ProductID: widget.ID, Quantity: 1},
	}, validAddress(), "card")
	require.NoError(t, err)

	_, err = svc.PayOrder(context.Background(), order.ID, userID, false, models.PaymentResult{TransactionID: "tx1", Status: "completed"})
	require.NoError(t, err)

	shipped, err := svc.UpdateStatus(context.Background(), order.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, shipped.Status)

	delivered, err := svc.UpdateStatus(context.Background(), order.ID, models.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, delivered.Status)
	assert.True(t, delivered.IsDelivered)

	// No way back out of a terminal state.
	_, err = svc.UpdateStatus(context.Background(), order.ID, models.OrderProcessing)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.OrderDelivered, transitionErr.From)

	_, err = svc.UpdateStatus(context.Background(), order.ID, models.OrderCancelled)
	require.ErrorAs(t, err, &transitionErr)
}

func TestAdminCancelViaStatusRestoresStock(t *testing.T) {
	widget := newTestProduct("widget", 10, 9)
	products := newFakeProductStore(widget)
	orders := newFakeOrderStore()
	svc := NewOrderService(products, orders, nil, testPricing)

	userID := primitive.NewObjectID()
	order, err := svc.PlaceOrder(context.Background(), userID, []ItemInput{
		{ProductID: widget.ID, Quantity: 4},
	}, validAddress(), "card")
	require.NoError(t, err)
	require.Equal(t, 5, products.stock(t, widget.ID))

	cancelled, err := svc.UpdateStatus(context.Background(), order.ID, models.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.Equal(t, 9, products.stock(t, widget.ID))
}

func TestGetOrderHidesOtherUsersOrders(t *testing.T) {
	widget := newTestProduct("widget", 10, 9)
	products := newFakeProductStore(widget)
	orders := newFakeOrderStore()
	svc := NewOrderService(products, orders, nil, testPricing)

	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	order, err := svc.PlaceOrder(context.Background(), owner, []ItemInput{
		{ProductID: widget.ID, Quantity: 1},
	}, validAddress(), "card")
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), order.ID, stranger, false)
	assert.ErrorIs(t, err, store.ErrOrderNotFound)

	got, err := svc.GetOrder(context.Background(), order.ID, stranger, true)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	products := newFakeProductStore()
	svc := NewOrderService(products, newFakeOrderStore(), nil, testPricing)

	_, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), []ItemInput{
		{ProductID: primitive.NewObjectID(), Quantity: 1},
	}, validAddress(), "card")
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func TestPlaceOrderStockExhaustionSequence(t *testing.T) {
	// Sequential orders drain stock to exactly zero, then fail.
	widget := newTestProduct("widget", 10, 6)
	products := newFakeProductStore(widget)
	svc := NewOrderService(products, newFakeOrderStore(), nil, testPricing)

	userID := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		_, err := svc.PlaceOrder(context.Background(), userID, []ItemInput{
			{ProductID: widget.ID, Quantity: 2},
		}, validAddress(), "card")
		require.NoError(t, err)
	}
	assert.Equal(t, 0, products.stock(t, widget.ID))

	_, err := svc.PlaceOrder(context.Background(), userID, []ItemInput{
		{ProductID: widget.ID, Quantity: 1},
	}, validAddress(), "card")
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, products.stock(t, widget.ID))
}
