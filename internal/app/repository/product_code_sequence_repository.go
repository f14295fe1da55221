package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/khatrisoftware/alankar-backend/internal/app/model"
	"github.com/khatrisoftware/alankar-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSequenceContention is returned when the counter row kept changing under
// every attempt.
var ErrSequenceContention = errors.New("product code sequence contention")

// ErrSequenceExhausted is returned when a category already holds a code at
// the largest representable sequence.
var ErrSequenceExhausted = errors.New("product code sequence exhausted")

const maxSequenceAttempts = 5

// ProductCodeSequenceRepository issues per-category product code sequences.
// A value is never issued twice, and never at or below the highest sequence
// already present in the products table.
type ProductCodeSequenceRepository interface {
	Next(ctx context.Context, category model.CategoryCode) (int64, error)
}

type productCodeSequenceRepository struct {
	db *gorm.DB
}

func NewProductCodeSequenceRepository(db *gorm.DB) ProductCodeSequenceRepository {
	return &productCodeSequenceRepository{db: db}
}

var errSequenceRaced = errors.New("sequence row changed concurrently")

func (r *productCodeSequenceRepository) Next(ctx context.Context, category model.CategoryCode) (int64, error) {
	for attempt := 1; attempt <= maxSequenceAttempts; attempt++ {
		next, err := r.tryNext(ctx, category)
		if err == nil {
			logger.Debug("Product code sequence issued", map[string]interface{}{
				"category": category,
				"sequence": next,
				"attempt":  attempt,
			})
			return next, nil
		}
		if !errors.Is(err, errSequenceRaced) {
			logger.Error("Failed to issue product code sequence", err, map[string]interface{}{
				"category": category,
			})
			return 0, err
		}
		logger.Warn("Product code sequence raced, retrying", map[string]interface{}{
			"category": category,
			"attempt":  attempt,
		})
	}
	return 0, ErrSequenceContention
}

// tryNext is one compare-and-swap round inside a transaction.
func (r *productCodeSequenceRepository) tryNext(ctx context.Context, category model.CategoryCode) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var codes []string
		if err := tx.Model(&model.Product{}).
			Where("category_code = ?", category).
			Pluck("code", &codes).Error; err != nil {
			return fmt.Errorf("scan category codes: %w", err)
		}
		highest := model.HighestCodeSequence(codes)

		row := model.ProductCodeSequence{CategoryCode: category}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("ensure sequence row: %w", err)
		}
		if err := tx.Where("category_code = ?", category).First(&row).Error; err != nil {
			return fmt.Errorf("load sequence row: %w", err)
		}

		current := max(row.LastValue, highest)
		if current == math.MaxInt64 {
			return ErrSequenceExhausted
		}
		next = current + 1

		result := tx.Model(&model.ProductCodeSequence{}).
			Where("category_code = ? AND last_value = ?", category, row.LastValue).
			Updates(map[string]interface{}{
				"last_value": next,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("advance sequence row: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errSequenceRaced
		}
		return nil
	})
	return next, err
}

// incrementAboveFloor is INCR that jumps to floor+1 when the counter is
// behind the products table (first use, or codes imported elsewhere).
var incrementAboveFloor = redis.NewScript(`
local v = redis.call('INCR', KEYS[1])
local floor = tonumber(ARGV[1])
if v <= floor then
  v = floor + 1
  redis.call('SET', KEYS[1], v)
end
return v
`)

type redisProductCodeSequenceRepository struct {
	client    *redis.Client
	products  ProductRepository
	keyPrefix string
}

// NewRedisProductCodeSequenceRepository keeps the counters in Redis; the
// products table still provides the floor.
func NewRedisProductCodeSequenceRepository(client *redis.Client, products ProductRepository) ProductCodeSequenceRepository {
	return &redisProductCodeSequenceRepository{
		client:    client,
		products:  products,
		keyPrefix: "catalog:code-seq:",
	}
}

func (r *redisProductCodeSequenceRepository) Next(ctx context.Context, category model.CategoryCode) (int64, error) {
	codes, err := r.products.ListCodesByCategory(ctx, category)
	if err != nil {
		return 0, err
	}
	floor := model.HighestCodeSequence(codes)
	if floor == math.MaxInt64 {
		return 0, ErrSequenceExhausted
	}

	next, err := incrementAboveFloor.Run(ctx, r.client, []string{r.keyPrefix + string(category)}, floor).Int64()
	if err != nil {
		logger.Error("Failed to increment product code sequence in redis", err, map[string]interface{}{
			"category": category,
		})
		return 0, fmt.Errorf("redis sequence: %w", err)
	}

	logger.Debug("Product code sequence issued", map[string]interface{}{
		"category": category,
		"sequence": next,
		"backend":  "redis",
	})
	return next, nil
}
