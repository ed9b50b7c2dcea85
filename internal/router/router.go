package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vendsight/vendsight-backend/config"
	"github.com/vendsight/vendsight-backend/internal/app/controller"
	"github.com/vendsight/vendsight-backend/internal/middleware"
)

type Router struct {
	authController      *controller.AuthController
	uploadController    *controller.UploadController
	analyticsController *controller.AnalyticsController
	catalogController   *controller.CatalogController
	mappingController   *controller.MappingController
	exportController    *controller.ExportController
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	uploadController *controller.UploadController,
	analyticsController *controller.AnalyticsController,
	catalogController *controller.CatalogController,
	mappingController *controller.MappingController,
	exportController *controller.ExportController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		uploadController:    uploadController,
		analyticsController: analyticsController,
		catalogController:   catalogController,
		mappingController:   mappingController,
		exportController:    exportController,
		authMiddleware:      authMiddleware,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "VendSight API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/profile", r.authMiddleware.Authenticate(), r.authController.GetProfile)
			auth.PUT("/profile", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		protected := v1.Group("")
		protected.Use(r.authMiddleware.Authenticate())
		{
			uploads := protected.Group("/uploads")
			{
				uploads.POST("", r.uploadController.Import)
				uploads.POST("/preview", r.uploadController.Preview)
				uploads.GET("", r.uploadController.History)
				uploads.GET("/:id", r.uploadController.Get)
			}

			protected.GET("/ws/progress", r.uploadController.ServeWS)

			protected.GET("/analytics", r.analyticsController.Get)

			protected.GET("/regions", r.catalogController.ListRegions)

			locations := protected.Group("/locations")
			{
				locations.GET("", r.catalogController.ListLocations)
				locations.GET("/:id", r.catalogController.GetLocation)
				locations.PUT("/:id", r.catalogController.UpdateLocation)
			}

			machines := protected.Group("/machines")
			{
				machines.GET("", r.catalogController.ListMachines)
				machines.GET("/:id", r.catalogController.GetMachine)
				machines.PUT("/:id", r.catalogController.UpdateMachine)
			}

			mappings := protected.Group("/mappings")
			{
				mappings.POST("", r.mappingController.Save)
				mappings.GET("", r.mappingController.List)
				mappings.GET("/:id", r.mappingController.Get)
				mappings.DELETE("/:id", r.mappingController.Delete)
			}

			protected.GET("/export", r.exportController.Export)
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

		if allowed {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
