package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

func testProduct(price float64) *models.Product {
	return &models.Product{
		ID:    primitive.NewObjectID(),
		Name:  "widget",
		Price: price,
		Stock: 10,
	}
}

func openSession(t *testing.T, userID primitive.ObjectID, p Persister) *Session {
	t.Helper()
	s, err := Open(context.Background(), userID, p)
	require.NoError(t, err)
	return s
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	s := openSession(t, primitive.NewObjectID(), NewMemoryPersister())
	p := testProduct(9.99)

	require.NoError(t, s.AddItem(p, 2))
	require.NoError(t, s.AddItem(p, 3))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 9.99, items[0].Price)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	s := openSession(t, primitive.NewObjectID(), NewMemoryPersister())

	assert.Error(t, s.AddItem(testProduct(1), 0))
	assert.Error(t, s.AddItem(testProduct(1), -1))
	assert.Empty(t, s.Items())
}

func TestAddItemSnapshotsPriceAtAddTime(t *testing.T) {
	s := openSession(t, primitive.NewObjectID(), NewMemoryPersister())
	p := testProduct(5)

	require.NoError(t, s.AddItem(p, 1))
	p.Price = 50

	assert.Equal(t, 5.0, s.Items()[0].Price)
}

func TestUpdateQuantity(t *testing.T) {
	s := openSession(t, primitive.NewObjectID(), NewMemoryPersister())
	p := testProduct(5)
	require.NoError(t, s.AddItem(p, 2))

	require.NoError(t, s.UpdateQuantity(p.ID, 7))
	assert.Equal(t, 7, s.Items()[0].Quantity)

	// Zero or negative removes the line.
	require.NoError(t, s.UpdateQuantity(p.ID, 0))
	assert.Empty(t, s.Items())

	assert.ErrorIs(t, s.UpdateQuantity(p.ID, 1), ErrItemNotFound)
}

func TestRemove(t *testing.T) {
	s := openSession(t, primitive.NewObjectID(), NewMemoryPersister())
	a, b := testProduct(1), testProduct(2)
	require.NoError(t, s.AddItem(a, 1))
	require.NoError(t, s.AddItem(b, 1))

	require.NoError(t, s.Remove(a.ID))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ProductID)

	assert.ErrorIs(t, s.Remove(a.ID), ErrItemNotFound)
}

func TestWishlistPresenceSemantics(t *testing.T) {
	s := openSession(t, primitive.NewObjectID(), NewMemoryPersister())
	id := primitive.NewObjectID()

	assert.False(t, s.InWishlist(id))

	s.AddToWishlist(id)
	s.AddToWishlist(id) // duplicate is a no-op
	assert.True(t, s.InWishlist(id))
	assert.Len(t, s.Wishlist(), 1)

	require.NoError(t, s.RemoveFromWishlist(id))
	assert.False(t, s.InWishlist(id))
	assert.ErrorIs(t, s.RemoveFromWishlist(id), ErrItemNotFound)
}

func TestFlushAndReopenRoundTrip(t *testing.T) {
	persister := NewMemoryPersister()
	userID := primitive.NewObjectID()
	p := testProduct(3.50)
	wish := primitive.NewObjectID()

	s := openSession(t, userID, persister)
	require.NoError(t, s.AddItem(p, 4))
	s.AddToWishlist(wish)
	require.NoError(t, s.Flush(context.Background()))

	reopened := openSession(t, userID, persister)
	items := reopened.Items()
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].ProductID)
	assert.Equal(t, 4, items[0].Quantity)
	assert.True(t, reopened.InWishlist(wish))
}

func TestUnflushedChangesAreNotPersisted(t *testing.T) {
	persister := NewMemoryPersister()
	userID := primitive.NewObjectID()

	s := openSession(t, userID, persister)
	require.NoError(t, s.AddItem(testProduct(1), 1))

	reopened := openSession(t, userID, persister)
	assert.Empty(t, reopened.Items())
}

func TestReplaceServerCopyWins(t *testing.T) {
	persister := NewMemoryPersister()
	userID := primitive.NewObjectID()

	s := openSession(t, userID, persister)
	require.NoError(t, s.AddItem(testProduct(1), 1))

	serverItem := models.CartItem{ProductID: primitive.NewObjectID(), Quantity: 2, Price: 8}
	s.Replace(&models.Cart{
		UserID: primitive.NewObjectID(), // overwritten: the session owner keeps the cart
		Items:  []models.CartItem{serverItem},
	})
	require.NoError(t, s.Flush(context.Background()))

	reopened := openSession(t, userID, persister)
	items := reopened.Items()
	require.Len(t, items, 1)
	assert.Equal(t, serverItem.ProductID, items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestPersisterIsolatesSnapshots(t *testing.T) {
	// Mutating a session after Flush must not leak into the stored copy.
	persister := NewMemoryPersister()
	userID := primitive.NewObjectID()
	p := testProduct(1)

	s := openSession(t, userID, persister)
	require.NoError(t, s.AddItem(p, 1))
	require.NoError(t, s.Flush(context.Background()))

	require.NoError(t, s.UpdateQuantity(p.ID, 99))

	reopened := openSession(t, userID, persister)
	assert.Equal(t, 1, reopened.Items()[0].Quantity)
}
