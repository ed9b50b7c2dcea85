package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vendsight/vendsight-backend/config"
	"github.com/vendsight/vendsight-backend/internal/app/controller"
	"github.com/vendsight/vendsight-backend/internal/app/repository"
	"github.com/vendsight/vendsight-backend/internal/app/service"
	"github.com/vendsight/vendsight-backend/internal/db"
	"github.com/vendsight/vendsight-backend/internal/middleware"
	"github.com/vendsight/vendsight-backend/internal/router"
	"github.com/vendsight/vendsight-backend/internal/scheduler"
	"github.com/vendsight/vendsight-backend/internal/storage"
	"github.com/vendsight/vendsight-backend/internal/websocket"
	"github.com/vendsight/vendsight-backend/pkg/logger"
	"github.com/vendsight/vendsight-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting VendSight Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the token blacklist and the analytics cache; both
	// degrade gracefully without it
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, caching and token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer redis.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	regionRepo := repository.NewRegionRepository(db.GetDB())
	locationRepo := repository.NewLocationRepository(db.GetDB())
	machineRepo := repository.NewMachineRepository(db.GetDB())
	salesRepo := repository.NewSalesRepository(db.GetDB())
	uploadRepo := repository.NewUploadRepository(db.GetDB())
	mappingRepo := repository.NewMappingRepository(db.GetDB())

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	importService := service.NewImportService(regionRepo, locationRepo, machineRepo, salesRepo, cfg.Import.BatchSize)
	analyticsService := service.NewAnalyticsService(salesRepo, regionRepo, locationRepo, machineRepo, cfg.Import.AnalyticsCacheTTL)
	mappingService := service.NewMappingService(mappingRepo)
	catalogService := service.NewCatalogService(regionRepo, locationRepo, machineRepo, analyticsService)
	exportService := service.NewExportService(salesRepo)

	var archiver storage.Archiver
	if cfg.S3.Bucket != "" {
		archiver = storage.NewS3Storage(&cfg.S3)
	}
	uploadService := service.NewUploadService(uploadRepo, importService, analyticsService, authService, archiver)

	// WebSocket hub for import progress
	hub := websocket.NewHub()
	go hub.Run()

	// Controllers
	authController := controller.NewAuthController(authService)
	uploadController := controller.NewUploadController(uploadService, mappingService, hub)
	analyticsController := controller.NewAnalyticsController(analyticsService)
	catalogController := controller.NewCatalogController(catalogService)
	mappingController := controller.NewMappingController(mappingService)
	exportController := controller.NewExportController(exportService)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r := router.NewRouter(
		authController,
		uploadController,
		analyticsController,
		catalogController,
		mappingController,
		exportController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Janitor for upload jobs stuck in "processing"
	staleScheduler := scheduler.NewStaleUploadScheduler(uploadRepo, cfg.Import.StaleAfter)
	if err := staleScheduler.Start(); err != nil {
		logger.Warn("Stale upload scheduler disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer staleScheduler.Stop()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
