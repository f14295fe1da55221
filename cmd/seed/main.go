package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/khatrisoftware/alankar-backend/config"
	"github.com/khatrisoftware/alankar-backend/internal/app"
	"github.com/khatrisoftware/alankar-backend/internal/app/service"
	"github.com/khatrisoftware/alankar-backend/internal/db"
	"github.com/khatrisoftware/alankar-backend/pkg/logger"
)

// Usage:
//
//	go run ./cmd/seed                 insert the sample ring
//	go run ./cmd/seed products.xlsx   import every row of the first sheet
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.ConfigFor(cfg.Server.Environment, cfg.Server.LogFormat))

	database, err := db.Initialize(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close(database)

	if err := db.Migrate(database); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	catalog, err := app.NewCatalog(cfg, database)
	if err != nil {
		log.Fatal("Failed to initialize catalog:", err)
	}
	defer catalog.Close()

	ctx := context.Background()

	if len(os.Args) < 2 {
		created, err := seedSample(ctx, catalog.Products)
		if err != nil {
			log.Fatal("Failed to seed sample product:", err)
		}
		if created == "" {
			fmt.Println("Seed product already exists")
			return
		}
		fmt.Printf("Seed product inserted: %s\n", created)
		return
	}

	filePath := os.Args[1]
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(rows))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	report := importProducts(ctx, catalog.Products, rows)
	for _, failure := range report.Failures {
		fmt.Printf("  row %d skipped: %v\n", failure.Row, failure.Err)
	}
	fmt.Println("Import completed!")
	fmt.Printf("Imported: %d, skipped: %d\n", len(report.Codes), len(report.Failures))
}

// RowFailure records a sheet row that could not be imported.
type RowFailure struct {
	Row int
	Err error
}

type ImportReport struct {
	Codes    []string
	Failures []RowFailure
}

func importProducts(ctx context.Context, products service.ProductService, rows []SheetRow) ImportReport {
	var report ImportReport
	for _, row := range rows {
		if row.Err != nil {
			report.Failures = append(report.Failures, RowFailure{Row: row.Number, Err: row.Err})
			continue
		}
		created, err := products.CreateProduct(ctx, row.Input)
		if err != nil {
			var verr *service.ValidationError
			if !errors.As(err, &verr) && !errors.Is(err, service.ErrProductCodeConflict) {
				err = fmt.Errorf("unexpected: %w", err)
			}
			report.Failures = append(report.Failures, RowFailure{Row: row.Number, Err: err})
			continue
		}
		report.Codes = append(report.Codes, created.Code)
	}
	return report
}
