package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khatrisoftware/alankar-backend/config"
	"github.com/khatrisoftware/alankar-backend/internal/app"
	"github.com/khatrisoftware/alankar-backend/internal/app/controller"
	"github.com/khatrisoftware/alankar-backend/internal/db"
	apperrors "github.com/khatrisoftware/alankar-backend/internal/errors"
	"github.com/khatrisoftware/alankar-backend/internal/middleware"
	"github.com/khatrisoftware/alankar-backend/internal/router"
	"github.com/khatrisoftware/alankar-backend/internal/scheduler"
	"github.com/khatrisoftware/alankar-backend/internal/storage"
	"github.com/khatrisoftware/alankar-backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logCfg := logger.ConfigFor(cfg.Server.Environment, cfg.Server.LogFormat)
	logger.Initialize(logCfg)
	apperrors.SetExposeInternalDetails(!cfg.Server.IsProduction())

	logger.Info("Starting Alankar catalog server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logCfg.Level,
	})

	// Initialize database
	database, err := db.Initialize(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err, cfg.Database.Target())
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	catalog, err := app.NewCatalog(cfg, database)
	if err != nil {
		logger.Fatal("Failed to initialize catalog", err)
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	if cfg.Catalog.NewArrivalDays > 0 {
		newArrivals := scheduler.NewNewArrivalScheduler(catalog.Products, cfg.Catalog.NewArrivalCron, cfg.Catalog.NewArrivalDays)
		if err := newArrivals.Start(); err != nil {
			logger.Fatal("Failed to start new-arrival scheduler", err)
		}
		defer newArrivals.Stop()
	} else {
		logger.Info("New-arrival scheduler disabled", nil)
	}

	productController := controller.NewProductController(catalog.Products)

	var uploadController *controller.UploadController
	if cfg.S3.Bucket != "" {
		uploadController = controller.NewUploadController(storage.NewS3Storage(context.Background(), &cfg.S3))
		logger.Info("Image upload presigning enabled", map[string]interface{}{
			"bucket": cfg.S3.Bucket,
			"region": cfg.S3.Region,
		})
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.AdminJWTSecret)
	if !authMiddleware.Enabled() {
		logger.Warn("ADMIN_JWT_SECRET not set, write routes are open", nil)
	}

	engine := router.NewRouter(productController, uploadController, authMiddleware, cfg).Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shut down", err)
	}

	logger.Info("Server stopped successfully")
}
