package cart

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

// MemoryPersister keeps cart snapshots in process memory. It stands in for
// browser-local storage and backs the tests.
type MemoryPersister struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]models.Cart
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{carts: make(map[primitive.ObjectID]models.Cart)}
}

func (m *MemoryPersister) Load(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.carts[userID]; ok {
		copied := c
		copied.Items = append([]models.CartItem(nil), c.Items...)
		copied.Wishlist = append([]primitive.ObjectID(nil), c.Wishlist...)
		return &copied, nil
	}
	return &models.Cart{
		UserID:   userID,
		Items:    []models.CartItem{},
		Wishlist: []primitive.ObjectID{},
	}, nil
}

func (m *MemoryPersister) Save(ctx context.Context, c *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *c
	copied.Items = append([]models.CartItem(nil), c.Items...)
	copied.Wishlist = append([]primitive.ObjectID(nil), c.Wishlist...)
	m.carts[c.UserID] = copied
	return nil
}
