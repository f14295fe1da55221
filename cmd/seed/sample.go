package main

import (
	"context"

	"github.com/khatrisoftware/alankar-backend/internal/app/model"
	"github.com/khatrisoftware/alankar-backend/internal/app/service"
)

const sampleImage = "https://images.unsplash.com/photo-1605100804763-247f67b3557e?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=400"

func sampleProduct() service.CreateProductInput {
	price := service.Price(125000)
	return service.CreateProductInput{
		Name:           "Diamond Solitaire Ring",
		Description:    "Elegant 1ct diamond ring in a classic solitaire setting.",
		Category:       string(model.CategoryRing),
		MetalType:      string(model.MetalGold916),
		Gender:         "Female",
		Weight:         "3.5g",
		Price:          &price,
		Images:         []string{sampleImage},
		IsNewProduct:   true,
		AvailableSizes: []string{"14", "16", "18", "20"},
	}
}

// seedSample inserts the sample ring unless a ring with the same name exists.
// It returns the new code, or "" when nothing was inserted.
func seedSample(ctx context.Context, products service.ProductService) (string, error) {
	sample := sampleProduct()

	page, err := products.ListProducts(ctx, service.ListProductsQuery{
		Name:     sample.Name,
		Category: sample.Category,
		Limit:    "100",
	})
	if err != nil {
		return "", err
	}
	for _, item := range page.Items {
		if item.Name == sample.Name {
			return "", nil
		}
	}

	created, err := products.CreateProduct(ctx, sample)
	if err != nil {
		return "", err
	}
	return created.Code, nil
}
