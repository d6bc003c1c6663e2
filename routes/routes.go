package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"storefront/controllers"
	"storefront/middleware"
	"storefront/store"
)

// Options bundles what route registration needs beyond the handlers.
type Options struct {
	JWTSecret []byte
	Blacklist store.TokenBlacklist

	// Redis may be nil; the rate limiter then passes everything through.
	Redis             *redis.Client
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

func Register(r *gin.Engine, h *controllers.Handler, opts Options) {
	r.Use(middleware.RequestID())
	r.Use(middleware.RateLimit(opts.Redis, opts.RateLimitRequests, opts.RateLimitWindow))

	api := r.Group("/api")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)

		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/categories", h.ListCategories)

		protected := api.Group("/")
		protected.Use(middleware.Auth(opts.JWTSecret, opts.Blacklist))
		{
			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				admin.GET("/products", h.ListProductsAdmin)
				admin.POST("/products", h.CreateProduct)
				admin.PUT("/products/:id", h.UpdateProduct)
				admin.DELETE("/products/:id", h.DeleteProduct)

				admin.POST("/categories", h.CreateCategory)
				admin.PUT("/categories/:id", h.UpdateCategory)
				admin.DELETE("/categories/:id", h.DeleteCategory)

				admin.GET("/orders", h.ListOrdersAdmin)
				admin.GET("/orders/:id", h.GetOrderAdmin)
				admin.PUT("/orders/:id/status", h.UpdateOrderStatus)
				admin.PUT("/orders/:id/cancel", h.CancelOrderAdmin)
			}

			user := protected.Group("/user")
			{
				user.GET("/profile", h.Profile)

				user.POST("/cart", h.AddToCart)
				user.GET("/cart", h.GetCart)
				user.PUT("/cart/:productId", h.UpdateCartItem)
				user.DELETE("/cart/:productId", h.RemoveFromCart)

				user.POST("/wishlist", h.AddToWishlist)
				user.GET("/wishlist", h.GetWishlist)
				user.DELETE("/wishlist/:productId", h.RemoveFromWishlist)

				user.POST("/products/:id/reviews", h.AddReview)

				user.POST("/orders", h.CreateOrder)
				user.GET("/orders", h.GetMyOrders)
				user.GET("/orders/:id", h.GetOrder)
				user.PUT("/orders/:id/pay", h.PayOrder)
				user.PUT("/orders/:id/cancel", h.CancelOrder)
			}
		}
	}
}
