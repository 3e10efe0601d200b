package main

import (
	"log"

	"storefront-be/internal/auth"
	"storefront-be/internal/cart"
	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/inventory"
	"storefront-be/internal/logger"
	"storefront-be/internal/order"
	"storefront-be/internal/pricing"
	"storefront-be/internal/product"
	"storefront-be/internal/rest"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	// Monetary amounts serialize as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	database, err := db.Open(cfg)
	if err != nil {
		logger.L().Fatal("failed to connect database", zap.Error(err))
	}
	defer database.Close()

	var blacklist auth.Blacklist
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.L().Fatal("invalid REDIS_URL", zap.Error(err))
		}
		blacklist = auth.NewRedisBlacklist(redis.NewClient(opts))
	}
	validator := auth.NewJWTValidator(cfg.JWTSecret, blacklist)

	engine := pricing.NewEngine(pricing.Config{
		DeliveryCharge:        cfg.DeliveryChargeDecimal(),
		FreeDeliveryThreshold: cfg.FreeDeliveryThresholdDecimal(),
	})

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	invRepo := inventory.NewRepository(database)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, productRepo, invRepo, engine)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, engine, true)

	router := rest.NewRouter(rest.Deps{
		Config:    cfg,
		Validator: validator,
		Cart:      rest.NewCartHandler(cartSvc),
		Order:     rest.NewOrderHandler(orderSvc),
		Product:   rest.NewProductHandler(productSvc),
	})

	logger.L().Info("server starting", zap.String("port", cfg.AppPort))
	if err := router.Run(":" + cfg.AppPort); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
