// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/handlers"
	"github.com/javajoker/storefront-backend/internal/middleware"
	"github.com/javajoker/storefront-backend/internal/services"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	notificationService := services.NewNotificationService(cfg)

	catalogService := services.NewCatalogService(db)
	paymentService := services.NewPaymentService(db, cfg)
	orderService := services.NewOrderService(db, cfg, notificationService)
	downloadService := services.NewDownloadService(db, cfg)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(catalogService, paymentService)
	webhookHandler := handlers.NewWebhookHandler(orderService, cfg)
	downloadHandler := handlers.NewDownloadHandler(downloadService, storageService)
	adminHandler := handlers.NewAdminHandler(adminService, catalogService, storageService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Webhooks are exempt from rate limiting; the gateway signs its payloads.
	r.POST("/webhooks/stripe", webhookHandler.HandleStripeEvent)

	// Storefront routes
	store := r.Group("")
	store.Use(middleware.GeneralRateLimit())
	{
		products := store.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.POST("/:id/purchase", middleware.CheckoutRateLimit(), productHandler.PurchaseProduct)
		}

		store.GET("/downloads/:id", downloadHandler.DownloadProduct)
	}

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AdminRequired(cfg), middleware.AuditLogMiddleware(db))
	{
		admin.GET("/dashboard", adminHandler.GetDashboard)

		adminProducts := admin.Group("/products")
		{
			adminProducts.GET("", adminHandler.GetProducts)
			adminProducts.POST("", adminHandler.CreateProduct)
			adminProducts.GET("/:id", adminHandler.GetProduct)
			adminProducts.PUT("/:id", adminHandler.UpdateProduct)
			adminProducts.PATCH("/:id/availability", adminHandler.SetProductAvailability)
			adminProducts.DELETE("/:id", adminHandler.DeleteProduct)
			adminProducts.GET("/:id/download", adminHandler.DownloadProductFile)
		}

		admin.GET("/orders", adminHandler.GetOrders)
		admin.GET("/users", adminHandler.GetCustomers)
	}

	return r, nil
}
