package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

// ListProductsParams holds catalog filtering, sorting and pagination.
type ListProductsParams struct {
	Search     string
	CategoryID *primitive.ObjectID
	MinPrice   *float64
	MaxPrice   *float64
	Featured   *bool
	Sort       string // price_asc, price_desc, rating, name, newest (default)
	Limit      int
	Offset     int
}

// UpdateProductParams carries a partial update; nil fields are left as-is.
type UpdateProductParams struct {
	Name           *string
	Description    *string
	Price          *float64
	Stock          *int
	CategoryID     *primitive.ObjectID
	Images         []models.Image
	Specifications []models.Specification
	Tags           []string
	IsFeatured     *bool
}

// ProductStore defines catalog persistence. DecrementStock must be a
// conditional write: it succeeds only if the resulting stock stays
// non-negative, otherwise it is a no-op returning ErrInsufficientStock.
type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, params ListProductsParams) ([]models.Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, params UpdateProductParams) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
	RestoreStock(ctx context.Context, id primitive.ObjectID, qty int) error
	AddReview(ctx context.Context, id primitive.ObjectID, review models.Review) (*models.Product, error)
}

// StatusUpdate describes a guarded order-status transition.
type StatusUpdate struct {
	From models.OrderStatus
	To   models.OrderStatus
	// PaymentResult, when set, marks the order paid.
	PaymentResult *models.PaymentResult
	// MarkDelivered sets the delivered flag and timestamp.
	MarkDelivered bool
}

// OrderStore defines order persistence. TransitionStatus updates the status
// only while the document still holds upd.From; a concurrent change surfaces
// as ErrStatusConflict so compensation (stock restore) never runs twice.
type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	TransitionStatus(ctx context.Context, id primitive.ObjectID, upd StatusUpdate) error
}

type CategoryStore interface {
	Create(ctx context.Context, c *models.Category) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// TokenBlacklist voids issued JWTs on logout until they expire naturally.
type TokenBlacklist interface {
	Add(ctx context.Context, token string, exp int64) error
	Contains(ctx context.Context, token string) (bool, error)
}

// CartStore persists cart snapshots; it is the server-side adapter behind
// the cart.Persister interface.
type CartStore interface {
	Load(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Save(ctx context.Context, c *models.Cart) error
	RemoveItems(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) error
}
