// Package gateway is the HTTP transport: routing, bearer authentication and
// the mapping from the service error taxonomy to response statuses.
package gateway

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/example/localhands/pkg/auth"
	"github.com/example/localhands/pkg/catalog"
	"github.com/example/localhands/pkg/config"
	"github.com/example/localhands/pkg/orders"
)

type Gateway struct {
	config  *config.Config
	logger  *zap.Logger
	router  *gin.Engine
	auth    *auth.Service
	catalog *catalog.Service
	orders  *orders.Service
}

func NewGateway(cfg *config.Config, logger *zap.Logger, authSvc *auth.Service, catalogSvc *catalog.Service, orderSvc *orders.Service) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Gateway{
		config:  cfg,
		logger:  logger,
		router:  router,
		auth:    authSvc,
		catalog: catalogSvc,
		orders:  orderSvc,
	}
}

func (g *Gateway) SetupRoutes() {
	// Health check
	g.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := g.router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", g.register)
			authGroup.POST("/token", g.passwordLogin)
			authGroup.POST("/google", g.googleLogin)
		}

		users := api.Group("/users")
		{
			users.GET("/me", g.requireUser, g.getMe)
			users.PUT("/:id/role", g.requireUser, g.updateUserRole)
		}

		shops := api.Group("/shops")
		{
			shops.POST("", g.requireUser, g.createShop)
			shops.GET("", g.listShops)
			// the path parameter is the public slug
			shops.GET("/:id", g.getShopBySlug)
			shops.PUT("/:id", g.requireUser, g.updateShop)
			shops.DELETE("/:id", g.requireUser, g.deleteShop)
			shops.POST("/:id/admins", g.requireUser, g.addShopAdmin)
			shops.DELETE("/:id/admins/:userId", g.requireUser, g.removeShopAdmin)
		}

		products := api.Group("/products")
		{
			products.POST("", g.requireUser, g.createProduct)
			products.GET("", g.listProducts)
			products.GET("/:id", g.getProduct)
			products.PUT("/:id", g.requireUser, g.updateProduct)
			products.DELETE("/:id", g.requireUser, g.deleteProduct)
		}

		orderGroup := api.Group("/orders")
		orderGroup.Use(g.requireUser)
		{
			orderGroup.POST("", g.createOrder)
			orderGroup.GET("", g.listOrders)
			orderGroup.GET("/:id", g.getOrder)
			orderGroup.PUT("/:id/status", g.updateOrderStatus)
		}

		api.GET("/categories", g.listCategories)
	}

	// Swagger
	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (g *Gateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.config.Server.Host, g.config.Server.Port)
	g.logger.Info("API gateway starting", zap.String("address", addr))
	return g.router.Run(addr)
}

// Router exposes the engine for tests.
func (g *Gateway) Router() http.Handler {
	return g.router
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
