package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting, populated from environment variables.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	MongoURI string `envconfig:"MONGO_URI" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`

	// RedisAddr empty disables the catalog cache and rate limiter.
	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	Pricing   PricingConfig
	RateLimit RateLimitConfig
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`
}

// PricingConfig drives the tax/shipping parts of an order total.
type PricingConfig struct {
	TaxRate         float64 `envconfig:"TAX_RATE" default:"0.10"`
	ShippingFee     float64 `envconfig:"SHIPPING_FEE" default:"10"`
	FreeShippingMin float64 `envconfig:"FREE_SHIPPING_MIN" default:"100"`
}

type RateLimitConfig struct {
	Requests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	Window   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// Load reads .env (if present) and the environment. Call once at startup.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if cfg.Pricing.TaxRate < 0 || cfg.Pricing.TaxRate >= 1 {
		return nil, fmt.Errorf("TAX_RATE must be in [0,1): got %v", cfg.Pricing.TaxRate)
	}
	return &cfg, nil
}
