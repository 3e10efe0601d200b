package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv  string `envconfig:"APP_ENV" default:"development"`
	AppPort string `envconfig:"APP_PORT" default:"8080"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`

	RedisURL  string `envconfig:"REDIS_URL"`
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	DeliveryCharge        string `envconfig:"DELIVERY_CHARGE" default:"50"`
	FreeDeliveryThreshold string `envconfig:"FREE_DELIVERY_THRESHOLD" default:"1000"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if _, err := decimal.NewFromString(cfg.DeliveryCharge); err != nil {
		return nil, fmt.Errorf("invalid DELIVERY_CHARGE %q: %w", cfg.DeliveryCharge, err)
	}
	if _, err := decimal.NewFromString(cfg.FreeDeliveryThreshold); err != nil {
		return nil, fmt.Errorf("invalid FREE_DELIVERY_THRESHOLD %q: %w", cfg.FreeDeliveryThreshold, err)
	}

	return &cfg, nil
}

// DeliveryChargeDecimal returns the configured flat delivery charge.
func (c *Config) DeliveryChargeDecimal() decimal.Decimal {
	d, _ := decimal.NewFromString(c.DeliveryCharge)
	return d
}

// FreeDeliveryThresholdDecimal returns the subtotal at which delivery is free.
func (c *Config) FreeDeliveryThresholdDecimal() decimal.Decimal {
	d, _ := decimal.NewFromString(c.FreeDeliveryThreshold)
	return d
}
