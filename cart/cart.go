// Package cart holds the cart/wishlist state container. The container owns
// the in-memory state for one user and writes through a Persister adapter,
// so the same logic backs a server-synced cart and an in-memory one.
package cart

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

var ErrItemNotFound = errors.New("product not in cart")

// Persister stores cart snapshots keyed by owner.
type Persister interface {
	Load(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Save(ctx context.Context, c *models.Cart) error
}

// Session is a loaded cart for a single user. Mutations apply to the local
// state; Flush writes the snapshot back through the persister.
type Session struct {
	state   *models.Cart
	persist Persister
}

// Open loads the user's cart through the persister.
func Open(ctx context.Context, userID primitive.ObjectID, p Persister) (*Session, error) {
	state, err := p.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Session{state: state, persist: p}, nil
}

// AddItem puts qty units of the product in the cart, incrementing the
// quantity if the product is already present. The unit price is snapshotted
// at add time. Stock is not checked here; checkout is the authority.
func (s *Session) AddItem(product *models.Product, qty int) error {
	if qty <= 0 {
		return errors.New("quantity must be positive")
	}
	for i, item := range s.state.Items {
		if item.ProductID == product.ID {
			s.state.Items[i].Quantity += qty
			return nil
		}
	}
	s.state.Items = append(s.state.Items, models.CartItem{
		ProductID: product.ID,
		Quantity:  qty,
		Price:     product.Price,
		AddedAt:   time.Now(),
	})
	return nil
}

// UpdateQuantity sets the quantity for a product already in the cart.
// A quantity of zero or less removes the entry.
func (s *Session) UpdateQuantity(productID primitive.ObjectID, qty int) error {
	for i, item := range s.state.Items {
		if item.ProductID == productID {
			if qty <= 0 {
				s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
			} else {
				s.state.Items[i].Quantity = qty
			}
			return nil
		}
	}
	return ErrItemNotFound
}

// Remove drops a product from the cart.
func (s *Session) Remove(productID primitive.ObjectID) error {
	return s.UpdateQuantity(productID, 0)
}

// Items returns the current cart entries.
func (s *Session) Items() []models.CartItem {
	return s.state.Items
}

// AddToWishlist records presence only; duplicates are ignored.
func (s *Session) AddToWishlist(productID primitive.ObjectID) {
	if s.InWishlist(productID) {
		return
	}
	s.state.Wishlist = append(s.state.Wishlist, productID)
}

func (s *Session) RemoveFromWishlist(productID primitive.ObjectID) error {
	for i, id := range s.state.Wishlist {
		if id == productID {
			s.state.Wishlist = append(s.state.Wishlist[:i], s.state.Wishlist[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (s *Session) InWishlist(productID primitive.ObjectID) bool {
	for _, id := range s.state.Wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

// Wishlist returns the wishlisted product ids.
func (s *Session) Wishlist() []primitive.ObjectID {
	return s.state.Wishlist
}

// Replace swaps the whole state for the given snapshot. Login sync uses
// this: the server copy wins, last writer takes all.
func (s *Session) Replace(snapshot *models.Cart) {
	snapshot.UserID = s.state.UserID
	s.state = snapshot
}

// Flush persists the current state.
func (s *Session) Flush(ctx context.Context) error {
	return s.persist.Save(ctx, s.state)
}
