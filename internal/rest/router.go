package rest

import (
	"net/http"

	"storefront-be/internal/auth"
	"storefront-be/internal/config"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps bundles everything the router needs wired in.
type Deps struct {
	Config    *config.Config
	Validator auth.TokenValidator
	Cart      *CartHandler
	Order     *OrderHandler
	Product   *ProductHandler
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(logger.RequestLogger())
	r.Use(middleware.RateLimit())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(deps.Validator)

	api := r.Group("/api")

	products := api.Group("/products")
	products.GET("", deps.Product.List)
	products.GET("/:id", deps.Product.Get)

	managed := products.Group("", requireAuth, middleware.RequireRole(auth.RoleSeller, auth.RoleAdmin))
	managed.POST("", deps.Product.Create)
	managed.PATCH("/:id", deps.Product.Update)
	managed.DELETE("/:id", deps.Product.Delete)

	cartGroup := api.Group("/cart", requireAuth)
	cartGroup.GET("", deps.Cart.Get)
	cartGroup.DELETE("", deps.Cart.Clear)
	cartGroup.POST("/items", deps.Cart.AddItem)
	cartGroup.POST("/sync", deps.Cart.Sync)
	cartGroup.PATCH("/items/:productId", deps.Cart.UpdateQuantity)
	cartGroup.DELETE("/items/:productId", deps.Cart.RemoveItem)

	orders := api.Group("/orders", requireAuth)
	orders.POST("", deps.Order.Create)
	orders.GET("", deps.Order.List)
	orders.GET("/:id", deps.Order.GetDetail)
	orders.PATCH("/:id/status", deps.Order.UpdateStatus)

	api.GET("/metrics", requireAuth, middleware.RequireRole(auth.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.Snapshot())
	})

	return r
}
