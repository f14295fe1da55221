package repository

import (
	"context"
	"strings"
	"time"

	"github.com/khatrisoftware/alankar-backend/internal/app/model"
	"github.com/khatrisoftware/alankar-backend/pkg/logger"
	"gorm.io/gorm"
)

// ProductSort is a sortable column. Only these values reach ORDER BY.
type ProductSort string

const (
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortUpdatedAt ProductSort = "updated_at"
	ProductSortName      ProductSort = "name"
	ProductSortCode      ProductSort = "code"
	ProductSortPrice     ProductSort = "price"
)

type ProductFilter struct {
	Search        string
	CodePrefix    string
	Name          string
	Gender        string
	Category      string
	MetalType     string
	OnSale        *bool
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	FindWithFilter(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	ListCodesByCategory(ctx context.Context, category model.CategoryCode) ([]string, error)
	UpdateFields(ctx context.Context, code string, updates map[string]interface{}) (*model.Product, error)
	DeleteByCodes(ctx context.Context, codes []string) (int64, error)
	ClearNewProductFlag(ctx context.Context, createdBefore time.Time) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"code":     product.Code,
		"name":     product.Name,
		"category": product.Category.Code,
	})

	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"code":     product.Code,
			"category": product.Category.Code,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"code":       product.Code,
	})
	return nil
}

func (r *productRepository) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	logger.Debug("Finding product by code in database", map[string]interface{}{
		"code": code,
	})

	var product model.Product
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).Where("code = ?", code).Count(&count).Error; err != nil {
		logger.Error("Failed to check product code in database", err, map[string]interface{}{
			"code": code,
		})
		return false, err
	}
	return count > 0, nil
}

// escapeLike makes user input literal inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *productRepository) filtered(ctx context.Context, filter ProductFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Product{})

	// LOWER(..) LIKE LOWER(..) behaves the same on postgres and sqlite.
	if filter.Search != "" {
		query = query.Where(
			`(code = ? OR LOWER(name) LIKE LOWER(?) ESCAPE '\')`,
			filter.Search, "%"+escapeLike(filter.Search)+"%",
		)
	}
	if filter.CodePrefix != "" {
		query = query.Where(`LOWER(code) LIKE LOWER(?) ESCAPE '\'`, escapeLike(filter.CodePrefix)+"%")
	}
	if filter.Name != "" {
		query = query.Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, "%"+escapeLike(filter.Name)+"%")
	}
	if filter.Gender != "" {
		query = query.Where("gender = ?", filter.Gender)
	}
	if filter.Category != "" {
		query = query.Where("category_code = ?", filter.Category)
	}
	if filter.MetalType != "" {
		query = query.Where("metal_type_code = ?", filter.MetalType)
	}
	if filter.OnSale != nil {
		query = query.Where("is_on_sale = ?", *filter.OnSale)
	}
	return query
}

func (r *productRepository) FindWithFilter(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"search":     filter.Search,
		"code":       filter.CodePrefix,
		"name":       filter.Name,
		"gender":     filter.Gender,
		"category":   filter.Category,
		"metal_type": filter.MetalType,
		"on_sale":    filter.OnSale,
		"sort_by":    filter.SortBy,
		"ascending":  filter.SortAscending,
		"limit":      filter.Limit,
		"offset":     filter.Offset,
	})

	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		logger.Error("Failed to count products with filter", err, nil)
		return nil, 0, err
	}

	sortBy := filter.SortBy
	switch sortBy {
	case ProductSortCreatedAt, ProductSortUpdatedAt, ProductSortName, ProductSortCode, ProductSortPrice:
	default:
		sortBy = ProductSortCreatedAt
	}
	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}

	query := r.filtered(ctx, filter).
		Order(string(sortBy) + " " + direction).
		Order("id " + direction)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, 0, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func (r *productRepository) ListCodesByCategory(ctx context.Context, category model.CategoryCode) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("category_code = ?", category).
		Pluck("code", &codes).Error; err != nil {
		logger.Error("Failed to list product codes by category", err, map[string]interface{}{
			"category": category,
		})
		return nil, err
	}
	return codes, nil
}

// UpdateFields applies a partial update keyed by column name and returns the
// stored row. gorm.ErrRecordNotFound when the code does not exist.
func (r *productRepository) UpdateFields(ctx context.Context, code string, updates map[string]interface{}) (*model.Product, error) {
	logger.Debug("Updating product in database", map[string]interface{}{
		"code":    code,
		"columns": len(updates),
	})

	var product model.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("code = ?", code).First(&product).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&product, product.ID).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Product updated in database", map[string]interface{}{
		"product_id": product.ID,
		"code":       product.Code,
	})
	return &product, nil
}

func (r *productRepository) DeleteByCodes(ctx context.Context, codes []string) (int64, error) {
	logger.Debug("Deleting products from database", map[string]interface{}{
		"codes": codes,
	})

	result := r.db.WithContext(ctx).Where("code IN ?", codes).Delete(&model.Product{})
	if result.Error != nil {
		logger.Error("Failed to delete products from database", result.Error, map[string]interface{}{
			"requested": len(codes),
		})
		return 0, result.Error
	}

	logger.Debug("Products deleted from database", map[string]interface{}{
		"requested": len(codes),
		"deleted":   result.RowsAffected,
	})
	return result.RowsAffected, nil
}

func (r *productRepository) ClearNewProductFlag(ctx context.Context, createdBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("is_new_product = ? AND created_at < ?", true, createdBefore).
		Update("is_new_product", false)
	if result.Error != nil {
		logger.Error("Failed to clear new product flag", result.Error, map[string]interface{}{
			"created_before": createdBefore,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
