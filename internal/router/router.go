package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khatrisoftware/alankar-backend/config"
	"github.com/khatrisoftware/alankar-backend/internal/app/controller"
	"github.com/khatrisoftware/alankar-backend/internal/errors"
	"github.com/khatrisoftware/alankar-backend/internal/middleware"
)

type Router struct {
	productController *controller.ProductController
	uploadController  *controller.UploadController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

// NewRouter wires the HTTP surface. uploadController may be nil when no
// bucket is configured; the presign route is then not registered.
func NewRouter(
	productController *controller.ProductController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		productController: productController,
		uploadController:  uploadController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.config.Server.GinMode != "" {
		gin.SetMode(r.config.Server.GinMode)
	}

	router := gin.New()

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		errors.InternalError(c, "Internal server error", fmt.Errorf("panic: %v", recovered))
	}))
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":    "ok",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		})

		api.GET("/filters", r.productController.GetFilters)

		admin := r.authMiddleware.RequireAdmin()

		products := api.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:code", r.productController.GetProduct)
			products.POST("", admin, r.productController.CreateProduct)
			products.PUT("/:code", admin, r.productController.UpdateProduct)
			products.DELETE("", admin, r.productController.DeleteProducts)
		}

		if r.uploadController != nil {
			api.POST("/uploads/presign", admin, r.uploadController.PresignProductImage)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", middleware.RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
