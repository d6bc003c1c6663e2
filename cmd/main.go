package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/cache"
	"storefront/config"
	"storefront/controllers"
	"storefront/database"
	"storefront/routes"
	"storefront/services"
	"storefront/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatalf("mongodb: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			log.Printf("mongodb disconnect: %v", err)
		}
	}()

	redisClient, err := database.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	if redisClient == nil {
		log.Println("redis not configured, cache and rate limiter disabled")
	}

	products := store.NewMongoProductStore(db.Products)
	categories := store.NewMongoCategoryStore(db.Categories)
	orders := store.NewMongoOrderStore(db.Orders)
	users := store.NewMongoUserStore(db.Users)
	carts := store.NewMongoCartStore(db.Carts)
	blacklist := store.NewMongoTokenBlacklist(db.Blacklist)

	orderService := services.NewOrderService(products, orders, carts, cfg.Pricing)
	catalogCache := cache.New(redisClient, "storefront:", cfg.CacheTTL)

	handler := controllers.New(controllers.Deps{
		Users:      users,
		Blacklist:  blacklist,
		Products:   products,
		Categories: categories,
		OrderStore: orders,
		Carts:      carts,
		Orders:     orderService,
		Cache:      catalogCache,
		JWTSecret:  []byte(cfg.JWTSecret),
		JWTTTL:     cfg.JWTTTL,
	})

	r := gin.Default()
	r.SetTrustedProxies(nil)
	routes.Register(r, handler, routes.Options{
		JWTSecret:         []byte(cfg.JWTSecret),
		Blacklist:         blacklist,
		Redis:             redisClient,
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitWindow:   cfg.RateLimit.Window,
	})

	log.Printf("listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
