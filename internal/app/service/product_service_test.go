package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/khatrisoftware/alankar-backend/internal/app/model"
	"github.com/khatrisoftware/alankar-backend/internal/app/repository"
	"github.com/khatrisoftware/alankar-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductServiceTest(t *testing.T) (ProductService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	sequenceRepo := repository.NewProductCodeSequenceRepository(testDB)
	return NewProductService(productRepo, sequenceRepo), testDB
}

func price(v float64) *Price {
	p := Price(v)
	return &p
}

func strPtr(s string) *string {
	return &s
}

func validInput(name, category string) CreateProductInput {
	return CreateProductInput{
		Name:      name,
		Category:  category,
		MetalType: "G916",
		Price:     price(125000),
		Images:    []string{"https://cdn.example.com/ring.jpg"},
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	productService, _ := setupProductServiceTest(t)
	ctx := context.Background()

	input := validInput("Diamond Solitaire Ring", "RG")
	input.AvailableSizes = []string{"14", "16", "18", "20"}

	product, err := productService.CreateProduct(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "KA-RG001", product.Code)
	assert.Equal(t, model.CategoryRef{Code: "RG", DisplayName: "Rings (औंठी)"}, product.Category)
	assert.Equal(t, model.MetalGold916, product.MetalType.Code)
	assert.Equal(t, "Gold 916 (22K) तेजाबी", product.MetalType.DisplayName)
	assert.Equal(t, float64(125000), product.Price)
	assert.Equal(t, []string{"14", "16", "18", "20"}, []string(product.AvailableSizes))

	second, err := productService.CreateProduct(ctx, validInput("Gold Band", "rg"))
	require.NoError(t, err)
	assert.Equal(t, "KA-RG002", second.Code)

	necklace, err := productService.CreateProduct(ctx, validInput("Rani Haar", "NK"))
	require.NoError(t, err)
	assert.Equal(t, "KA-NK001", necklace.Code)
}

func TestProductService_CreateProduct_DefaultsEmptyArrays(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	input := validInput("Plain Chain", "CH")
	input.Images = nil

	product, err := productService.CreateProduct(context.Background(), input)
	require.NoError(t, err)
	assert.NotNil(t, product.Images)
	assert.Empty(t, product.Images)
	assert.NotNil(t, product.AvailableSizes)
	assert.Empty(t, product.AvailableSizes)
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	tests := []struct {
		name       string
		mutate     func(in *CreateProductInput)
		wantFields []string
	}{
		{"Missing name", func(in *CreateProductInput) { in.Name = "   " }, []string{"name"}},
		{"Unknown category", func(in *CreateProductInput) { in.Category = "XX" }, []string{"category"}},
		{"Missing category", func(in *CreateProductInput) { in.Category = "" }, []string{"category"}},
		{"Unknown metal", func(in *CreateProductInput) { in.MetalType = "S925" }, []string{"metalType"}},
		{"Missing price", func(in *CreateProductInput) { in.Price = nil }, []string{"price"}},
		{"Negative price", func(in *CreateProductInput) { in.Price = price(-1) }, []string{"price"}},
		{"NaN price", func(in *CreateProductInput) { in.Price = price(math.NaN()) }, []string{"price"}},
		{"Infinite price", func(in *CreateProductInput) { in.Price = price(math.Inf(1)) }, []string{"price"}},
		{"Relative image", func(in *CreateProductInput) { in.Images = []string{"img/ring.jpg"} }, []string{"images"}},
		{"Several at once", func(in *CreateProductInput) {
			in.Name = ""
			in.Category = "ZZ"
		}, []string{"name", "category"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput("Diamond Solitaire Ring", "RG")
			tt.mutate(&input)

			product, err := productService.CreateProduct(context.Background(), input)
			assert.Nil(t, product)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			for _, field := range tt.wantFields {
				assert.Contains(t, verr.Fields, field)
			}
		})
	}

	var count int64
	require.NoError(t, testDB.Model(&model.Product{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProductService_CreateProduct_RejectedPriceKeepsSequence(t *testing.T) {
	productService, _ := setupProductServiceTest(t)
	ctx := context.Background()

	input := validInput("Gold Band", "RG")
	input.Price = price(math.NaN())
	_, err := productService.CreateProduct(ctx, input)
	require.Error(t, err)

	product, err := productService.CreateProduct(ctx, validInput("Gold Band", "RG"))
	require.NoError(t, err)
	assert.Equal(t, "KA-RG001", product.Code)
}

func TestProductService_CreateProduct_NegativeZeroPrice(t *testing.T) {
	productService, _ := setupProductServiceTest(t)
	ctx := context.Background()

	input := validInput("Gift Box", "RG")
	input.Price = price(math.Copysign(0, -1))
	created, err := productService.CreateProduct(ctx, input)
	require.NoError(t, err)
	assert.False(t, math.Signbit(created.Price))

	body, err := json.Marshal(created)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"price":0`)
	assert.NotContains(t, string(body), `"price":-0`)

	updated, err := productService.UpdateProduct(ctx, created.Code, UpdateProductInput{Price: price(math.Copysign(0, -1))})
	require.NoError(t, err)
	assert.False(t, math.Signbit(updated.Price))
}

func TestProductService_CreateProduct_ConflictWhenCodeTaken(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)
	ctx := context.Background()

	// A counter that lags behind the table hands out a code already in use.
	require.NoError(t, testDB.Create(&model.Product{
		Code:      "KA-ER002",
		Name:      "Legacy",
		Category:  model.NewCategoryRef(model.CategoryEarring),
		MetalType: model.NewMetalTypeRef(model.MetalGold916),
	}).Error)

	productService = NewProductService(repository.NewProductRepository(testDB), fixedSequence(2))

	_, err := productService.CreateProduct(ctx, validInput("Jhumka", "ER"))
	assert.ErrorIs(t, err, ErrProductCodeConflict)
}

type fixedSequence int64

func (f fixedSequence) Next(context.Context, model.CategoryCode) (int64, error) {
	return int64(f), nil
}

func TestPrice_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    float64
		wantErr bool
	}{
		{"Number", `{"price": 125000}`, 125000, false},
		{"Decimal", `{"price": 99.5}`, 99.5, false},
		{"Numeric string", `{"price": "125000"}`, 125000, false},
		{"Padded string", `{"price": " 42.25 "}`, 42.25, false},
		{"Word", `{"price": "cheap"}`, 0, true},
		{"NaN string", `{"price": "NaN"}`, 0, true},
		{"Infinity string", `{"price": "Infinity"}`, 0, true},
		{"Inf string", `{"price": "+Inf"}`, 0, true},
		{"Boolean", `{"price": true}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var input CreateProductInput
			err := json.Unmarshal([]byte(tt.body), &input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, input.Price)
			assert.Equal(t, tt.want, float64(*input.Price))
		})
	}
}

func TestProductService_GetProduct(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)
	ctx := context.Background()

	// Stored display names are stale; the lookup table wins on read.
	require.NoError(t, testDB.Create(&model.Product{
		Code:      "KA-BR001",
		Name:      "Tennis Bracelet",
		Category:  model.CategoryRef{Code: model.CategoryBracelet, DisplayName: "old"},
		MetalType: model.MetalTypeRef{Code: model.MetalGold999, DisplayName: "old"},
	}).Error)

	product, err := productService.GetProduct(ctx, "KA-BR001")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryBracelet.DisplayName(), product.Category.DisplayName)
	assert.Equal(t, model.MetalGold999.DisplayName(), product.MetalType.DisplayName)
	assert.NotNil(t, product.Images)
	assert.NotNil(t, product.AvailableSizes)

	_, err = productService.GetProduct(ctx, "KA-BR404")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_UpdateProduct(t *testing.T) {
	productService, _ := setupProductServiceTest(t)
	ctx := context.Background()

	created, err := productService.CreateProduct(ctx, validInput("Diamond Solitaire Ring", "RG"))
	require.NoError(t, err)

	updated, err := productService.UpdateProduct(ctx, created.Code, UpdateProductInput{
		Price:     price(130000),
		IsOnSale:  boolPtr(true),
		MetalType: strPtr("g999"),
	})
	require.NoError(t, err)
	assert.Equal(t, "KA-RG001", updated.Code)
	assert.Equal(t, "Diamond Solitaire Ring", updated.Name)
	assert.Equal(t, float64(130000), updated.Price)
	assert.True(t, updated.IsOnSale)
	assert.Equal(t, model.MetalTypeRef{Code: model.MetalGold999, DisplayName: model.MetalGold999.DisplayName()}, updated.MetalType)
	assert.Equal(t, []string{"https://cdn.example.com/ring.jpg"}, []string(updated.Images))

	fetched, err := productService.GetProduct(ctx, created.Code)
	require.NoError(t, err)
	assert.Equal(t, float64(130000), fetched.Price)
}

func boolPtr(b bool) *bool {
	return &b
}

func TestProductService_UpdateProduct_Errors(t *testing.T) {
	productService, _ := setupProductServiceTest(t)
	ctx := context.Background()

	created, err := productService.CreateProduct(ctx, validInput("Om Pendant", "PD"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		code    string
		input   UpdateProductInput
		wantErr error
		field   string
	}{
		{"Unknown code", "KA-PD999", UpdateProductInput{Price: price(1)}, ErrProductNotFound, ""},
		{"Unknown category", created.Code, UpdateProductInput{Category: strPtr("XX")}, nil, "category"},
		{"Negative price", created.Code, UpdateProductInput{Price: price(-5)}, nil, "price"},
		{"Infinite price", created.Code, UpdateProductInput{Price: price(math.Inf(-1))}, nil, "price"},
		{"NaN price", created.Code, UpdateProductInput{Price: price(math.NaN())}, nil, "price"},
		{"Blank name", created.Code, UpdateProductInput{Name: strPtr(" ")}, nil, "name"},
		{"Bad image URL", created.Code, UpdateProductInput{Images: &[]string{"not a url"}}, nil, "images"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := productService.UpdateProduct(ctx, tt.code, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	unchanged, err := productService.GetProduct(ctx, created.Code)
	require.NoError(t, err)
	assert.Equal(t, "Om Pendant", unchanged.Name)
	assert.Equal(t, model.CategoryPendant, unchanged.Category.Code)
	assert.Equal(t, float64(125000), unchanged.Price)
}

func TestProductService_DeleteProductsBulk(t *testing.T) {
	productService, _ := setupProductServiceTest(t)
	ctx := context.Background()

	first, err := productService.CreateProduct(ctx, validInput("Ring One", "RG"))
	require.NoError(t, err)
	second, err := productService.CreateProduct(ctx, validInput("Ring Two", "RG"))
	require.NoError(t, err)

	result, err := productService.DeleteProductsBulk(ctx, []string{first.Code, second.Code, "KA-RG999"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, int64(2), result.Deleted)

	_, err = productService.GetProduct(ctx, first.Code)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = productService.DeleteProductsBulk(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyCodeList)

	// Deleted codes are not handed out again.
	third, err := productService.CreateProduct(ctx, validInput("Ring Three", "RG"))
	require.NoError(t, err)
	assert.Equal(t, "KA-RG003", third.Code)
}

func TestProductService_GetFilters(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	filters := productService.GetFilters()
	require.Len(t, filters.Categories, 11)
	require.Len(t, filters.MetalTypes, 2)
	assert.Equal(t, model.CategoryRing, filters.Categories[0].Code)
	assert.Equal(t, model.CategoryGoldCoin, filters.Categories[10].Code)
	assert.Equal(t, model.MetalGold916, filters.MetalTypes[0].Code)
}

func TestProductService_ListProducts(t *testing.T) {
	productService, _ := setupProductServiceTest(t)
	ctx := context.Background()

	for _, in := range []CreateProductInput{
		validInput("Diamond Solitaire Ring", "RG"),
		validInput("Gold Band", "RG"),
		validInput("Rani Haar", "NK"),
	} {
		_, err := productService.CreateProduct(ctx, in)
		require.NoError(t, err)
	}
	noImage := validInput("Jhumka", "ER")
	noImage.Images = nil
	noImage.IsOnSale = true
	_, err := productService.CreateProduct(ctx, noImage)
	require.NoError(t, err)

	page, err := productService.ListProducts(ctx, ListProductsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageLimit, page.Limit)
	assert.Equal(t, int64(4), page.Total)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Items, 4)

	page, err = productService.ListProducts(ctx, ListProductsQuery{Limit: "3", Page: "2", SortBy: "code", SortOrder: "ASC"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "KA-RG002", page.Items[0].Code)

	page, err = productService.ListProducts(ctx, ListProductsQuery{OnSale: strPtr("YES")})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "KA-ER001", page.Items[0].Code)
	assert.Equal(t, []string{""}, page.Items[0].Images)

	page, err = productService.ListProducts(ctx, ListProductsQuery{OnSale: strPtr("maybe")})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)

	page, err = productService.ListProducts(ctx, ListProductsQuery{Search: "KA-NK001"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Rani Haar", page.Items[0].Name)

	page, err = productService.ListProducts(ctx, ListProductsQuery{Category: "XX"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Zero(t, page.TotalPages)
	assert.NotNil(t, page.Items)
}

func TestParseLimitAndPage(t *testing.T) {
	limits := map[string]int{
		"":     DefaultPageLimit,
		"abc":  DefaultPageLimit,
		"0":    DefaultPageLimit,
		"-5":   1,
		"7":    7,
		"100":  100,
		"1000": MaxPageLimit,
	}
	for raw, want := range limits {
		assert.Equal(t, want, parseLimit(raw), "limit %q", raw)
	}

	pages := map[string]int{"": 1, "x": 1, "0": 1, "-3": 1, "4": 4}
	for raw, want := range pages {
		assert.Equal(t, want, parsePage(raw), "page %q", raw)
	}
}

func TestProductService_ExpireNewArrivals(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)
	ctx := context.Background()

	input := validInput("Old Arrival", "AN")
	input.IsNewProduct = true
	old, err := productService.CreateProduct(ctx, input)
	require.NoError(t, err)
	require.NoError(t, testDB.Model(&model.Product{}).Where("code = ?", old.Code).
		UpdateColumn("created_at", time.Now().AddDate(0, 0, -45)).Error)

	input = validInput("Fresh Arrival", "AN")
	input.IsNewProduct = true
	fresh, err := productService.CreateProduct(ctx, input)
	require.NoError(t, err)

	cleared, err := productService.ExpireNewArrivals(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	reloaded, err := productService.GetProduct(ctx, fresh.Code)
	require.NoError(t, err)
	assert.True(t, reloaded.IsNewProduct)
}
