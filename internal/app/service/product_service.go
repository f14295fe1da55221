package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/khatrisoftware/alankar-backend/internal/app/model"
	"github.com/khatrisoftware/alankar-backend/internal/app/repository"
	"github.com/khatrisoftware/alankar-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductCodeConflict = errors.New("product code already exists")
	ErrEmptyCodeList       = errors.New("codes must be a non-empty list")
)

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100
)

// ListProductsQuery holds the raw query string values; parsing and clamping
// happen in ListProducts.
type ListProductsQuery struct {
	Page      string
	Limit     string
	SortBy    string
	SortOrder string
	Search    string
	Code      string
	Name      string
	Gender    string
	Category  string
	MetalType string
	OnSale    *string
}

type ProductPage struct {
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	Total      int64                  `json:"total"`
	TotalPages int                    `json:"totalPages"`
	Items      []model.ProductSummary `json:"items"`
}

type FilterOptions struct {
	Categories []model.CategoryRef  `json:"categories"`
	MetalTypes []model.MetalTypeRef `json:"metalTypes"`
}

type BulkDeleteResult struct {
	Requested int
	Deleted   int64
}

type ProductService interface {
	ListProducts(ctx context.Context, query ListProductsQuery) (*ProductPage, error)
	GetProduct(ctx context.Context, code string) (*model.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, code string, input UpdateProductInput) (*model.Product, error)
	DeleteProductsBulk(ctx context.Context, codes []string) (*BulkDeleteResult, error)
	GetFilters() FilterOptions
	ExpireNewArrivals(ctx context.Context, olderThan time.Duration) (int64, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	sequenceRepo repository.ProductCodeSequenceRepository
}

func NewProductService(productRepo repository.ProductRepository, sequenceRepo repository.ProductCodeSequenceRepository) ProductService {
	return &productService{
		productRepo:  productRepo,
		sequenceRepo: sequenceRepo,
	}
}

// sortColumns maps the public sortBy names onto sortable columns.
var sortColumns = map[string]repository.ProductSort{
	"createdAt": repository.ProductSortCreatedAt,
	"updatedAt": repository.ProductSortUpdatedAt,
	"name":      repository.ProductSortName,
	"code":      repository.ProductSortCode,
	"price":     repository.ProductSortPrice,
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil, limit == 0:
		return DefaultPageLimit
	case limit < 0:
		return 1
	case limit > MaxPageLimit:
		return MaxPageLimit
	}
	return limit
}

func parseOnSale(raw *string) *bool {
	if raw == nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(*raw)) {
	case "true", "1", "yes":
		v := true
		return &v
	}
	v := false
	return &v
}

func (s *productService) ListProducts(ctx context.Context, query ListProductsQuery) (*ProductPage, error) {
	page := parsePage(query.Page)
	limit := parseLimit(query.Limit)

	sortBy, ok := sortColumns[query.SortBy]
	if !ok {
		if query.SortBy != "" {
			logger.Debug("Unknown sort field, using createdAt", map[string]interface{}{
				"sort_by": query.SortBy,
			})
		}
		sortBy = repository.ProductSortCreatedAt
	}

	filter := repository.ProductFilter{
		Search:        strings.TrimSpace(query.Search),
		CodePrefix:    strings.TrimSpace(query.Code),
		Name:          strings.TrimSpace(query.Name),
		Gender:        query.Gender,
		Category:      query.Category,
		MetalType:     query.MetalType,
		OnSale:        parseOnSale(query.OnSale),
		SortBy:        sortBy,
		SortAscending: strings.EqualFold(query.SortOrder, "asc"),
		Limit:         limit,
		Offset:        (page - 1) * limit,
	}

	logger.Debug("Listing products", map[string]interface{}{
		"page":     page,
		"limit":    limit,
		"sort_by":  filter.SortBy,
		"search":   filter.Search,
		"category": filter.Category,
	})

	products, total, err := s.productRepo.FindWithFilter(ctx, filter)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]model.ProductSummary, 0, len(products))
	for i := range products {
		items = append(items, products[i].Summary())
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	logger.Info("Products listed", map[string]interface{}{
		"count": len(items),
		"total": total,
		"page":  page,
	})
	return &ProductPage{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		Items:      items,
	}, nil
}

func (s *productService) GetProduct(ctx context.Context, code string) (*model.Product, error) {
	logger.Debug("Fetching product by code", map[string]interface{}{
		"code": code,
	})

	product, err := s.productRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"code": code,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"code": code,
		})
		return nil, fmt.Errorf("get product %s: %w", code, err)
	}

	product.Normalize()
	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, input CreateProductInput) (*model.Product, error) {
	input.Name = strings.TrimSpace(input.Name)

	verr := &ValidationError{}
	collectTagErrors(&input, verr)
	category := checkCategory(input.Category, verr)
	metal := checkMetalType(input.MetalType, verr)
	checkPrice(input.Price, verr)
	if err := verr.orNil(); err != nil {
		logger.Warn("Product validation failed", map[string]interface{}{
			"fields": verr.Fields,
		})
		return nil, err
	}

	seq, err := s.sequenceRepo.Next(ctx, category)
	if err != nil {
		logger.Error("Failed to allocate product code", err, map[string]interface{}{
			"category": category,
		})
		return nil, fmt.Errorf("allocate product code: %w", err)
	}
	code := model.FormatProductCode(category, seq)

	exists, err := s.productRepo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("check product code %s: %w", code, err)
	}
	if exists {
		logger.Warn("Generated product code already in use", map[string]interface{}{
			"code": code,
		})
		return nil, ErrProductCodeConflict
	}

	product := &model.Product{
		Code:           code,
		Name:           input.Name,
		Description:    input.Description,
		Category:       model.NewCategoryRef(category),
		MetalType:      model.NewMetalTypeRef(metal),
		Gender:         strings.TrimSpace(input.Gender),
		Weight:         input.Weight,
		Price:          input.Price.Float64(),
		Images:         datatypes.JSONSlice[string](nonNil(input.Images)),
		IsNewProduct:   input.IsNewProduct,
		IsOnSale:       input.IsOnSale,
		IsFeatured:     input.IsFeatured,
		AvailableSizes: datatypes.JSONSlice[string](nonNil(input.AvailableSizes)),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProductCodeConflict
		}
		return nil, fmt.Errorf("create product %s: %w", code, err)
	}

	logger.Info("Product created", map[string]interface{}{
		"code":     product.Code,
		"category": category,
		"price":    product.Price,
	})
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, code string, input UpdateProductInput) (*model.Product, error) {
	verr := &ValidationError{}
	collectTagErrors(&input, verr)

	updates := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			verr.add("name", "must not be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Category != nil {
		category := checkCategory(*input.Category, verr)
		updates["category_code"] = category
		updates["category_display_name"] = category.DisplayName()
	}
	if input.MetalType != nil {
		metal := checkMetalType(*input.MetalType, verr)
		updates["metal_type_code"] = metal
		updates["metal_type_display_name"] = metal.DisplayName()
	}
	if input.Gender != nil {
		updates["gender"] = strings.TrimSpace(*input.Gender)
	}
	if input.Weight != nil {
		updates["weight"] = *input.Weight
	}
	if input.Price != nil {
		checkPrice(input.Price, verr)
		updates["price"] = input.Price.Float64()
	}
	if input.Images != nil {
		updates["images"] = datatypes.JSONSlice[string](nonNil(*input.Images))
	}
	if input.AvailableSizes != nil {
		updates["available_sizes"] = datatypes.JSONSlice[string](nonNil(*input.AvailableSizes))
	}
	if input.IsNewProduct != nil {
		updates["is_new_product"] = *input.IsNewProduct
	}
	if input.IsOnSale != nil {
		updates["is_on_sale"] = *input.IsOnSale
	}
	if input.IsFeatured != nil {
		updates["is_featured"] = *input.IsFeatured
	}

	if err := verr.orNil(); err != nil {
		logger.Warn("Product update validation failed", map[string]interface{}{
			"code":   code,
			"fields": verr.Fields,
		})
		return nil, err
	}

	product, err := s.productRepo.UpdateFields(ctx, code, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found for update", map[string]interface{}{
				"code": code,
			})
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product %s: %w", code, err)
	}

	product.Normalize()
	logger.Info("Product updated", map[string]interface{}{
		"code":    code,
		"columns": len(updates),
	})
	return product, nil
}

func (s *productService) DeleteProductsBulk(ctx context.Context, codes []string) (*BulkDeleteResult, error) {
	if len(codes) == 0 {
		return nil, ErrEmptyCodeList
	}

	deleted, err := s.productRepo.DeleteByCodes(ctx, codes)
	if err != nil {
		logger.Error("Failed to delete products", err, map[string]interface{}{
			"requested": len(codes),
		})
		return nil, fmt.Errorf("delete products: %w", err)
	}

	logger.Info("Products deleted", map[string]interface{}{
		"requested": len(codes),
		"deleted":   deleted,
	})
	return &BulkDeleteResult{Requested: len(codes), Deleted: deleted}, nil
}

func (s *productService) GetFilters() FilterOptions {
	return FilterOptions{
		Categories: model.Categories(),
		MetalTypes: model.MetalTypes(),
	}
}

// ExpireNewArrivals clears the new-arrival flag on products created more than
// olderThan ago.
func (s *productService) ExpireNewArrivals(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	cleared, err := s.productRepo.ClearNewProductFlag(ctx, cutoff)
	if err != nil {
		logger.Error("Failed to expire new arrivals", err)
		return 0, fmt.Errorf("expire new arrivals: %w", err)
	}

	logger.Info("New arrivals expired", map[string]interface{}{
		"cleared": cleared,
		"cutoff":  cutoff.Format(time.RFC3339),
	})
	return cleared, nil
}
