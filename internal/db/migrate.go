package db

import (
	"github.com/khatrisoftware/alankar-backend/internal/app/model"
	"github.com/khatrisoftware/alankar-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the catalog.
func Models() []interface{} {
	return []interface{}{
		&model.Product{},
		&model.ProductCodeSequence{},
	}
}

// Migrate creates or updates the catalog tables and their indexes
// (unique code; category_code, metal_type_code and gender lookups).
func Migrate(database *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := database.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
