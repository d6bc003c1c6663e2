package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/cache"
	"storefront/middleware"
	"storefront/models"
	"storefront/services"
	"storefront/store"
)

// Handler carries every dependency the HTTP layer needs. Stores and the
// order engine are injected so handlers stay testable against fakes.
type Handler struct {
	users      store.UserStore
	blacklist  store.TokenBlacklist
	products   store.ProductStore
	categories store.CategoryStore
	orderStore store.OrderStore
	carts      store.CartStore
	orders     *services.OrderService
	cache      *cache.Cache

	jwtSecret []byte
	jwtTTL    time.Duration
}

type Deps struct {
	Users      store.UserStore
	Blacklist  store.TokenBlacklist
	Products   store.ProductStore
	Categories store.CategoryStore
	OrderStore store.OrderStore
	Carts      store.CartStore
	Orders     *services.OrderService
	Cache      *cache.Cache
	JWTSecret  []byte
	JWTTTL     time.Duration
}

func New(deps Deps) *Handler {
	return &Handler{
		users:      deps.Users,
		blacklist:  deps.Blacklist,
		products:   deps.Products,
		categories: deps.Categories,
		orderStore: deps.OrderStore,
		carts:      deps.Carts,
		orders:     deps.Orders,
		cache:      deps.Cache,
		jwtSecret:  deps.JWTSecret,
		jwtTTL:     deps.JWTTTL,
	}
}

// currentUserID reads the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	raw, exists := c.Get("userId")
	if !exists {
		return primitive.NilObjectID, false
	}
	hex, ok := raw.(string)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	return role == models.RoleAdmin
}

// respondError maps domain errors onto the HTTP taxonomy. Unexpected errors
// are logged with the request id and returned as a generic message.
func (h *Handler) respondError(c *gin.Context, err error) {
	var stockErr *services.InsufficientStockError
	var transitionErr *services.InvalidTransitionError
	var addrErr *services.InvalidAddressError

	switch {
	case errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, store.ErrCategoryNotFound),
		errors.Is(err, store.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, store.ErrEmailTaken),
		errors.Is(err, store.ErrCategoryExists),
		errors.Is(err, store.ErrStatusConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.As(err, &addrErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": addrErr.Error(), "fields": addrErr.Fields})

	case errors.As(err, &stockErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": stockErr.Error(), "items": stockErr.Shortages})

	case errors.As(err, &transitionErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": transitionErr.Error(),
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})

	default:
		requestID := c.GetString(middleware.RequestIDKey)
		log.Printf("[%s] %s %s: %v", requestID, c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
