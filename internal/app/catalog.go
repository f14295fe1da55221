package app

import (
	"github.com/khatrisoftware/alankar-backend/config"
	"github.com/khatrisoftware/alankar-backend/internal/app/repository"
	"github.com/khatrisoftware/alankar-backend/internal/app/service"
	"github.com/khatrisoftware/alankar-backend/pkg/logger"
	pkgredis "github.com/khatrisoftware/alankar-backend/pkg/redis"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	SequencerDatabase = "database"
	SequencerRedis    = "redis"
)

// Catalog bundles the product service with the resources it owns.
type Catalog struct {
	Products service.ProductService
	redis    *redis.Client
}

// NewCatalog builds the product service on database, choosing the code
// sequencer from cfg. A redis sequencer without an address falls back to the
// database counter.
func NewCatalog(cfg *config.Config, database *gorm.DB) (*Catalog, error) {
	productRepo := repository.NewProductRepository(database)
	catalog := &Catalog{}

	var sequenceRepo repository.ProductCodeSequenceRepository
	switch {
	case cfg.Catalog.CodeSequencer == SequencerRedis && cfg.Redis.Addr != "":
		client, err := pkgredis.Init(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		catalog.redis = client
		sequenceRepo = repository.NewRedisProductCodeSequenceRepository(client, productRepo)
	default:
		if cfg.Catalog.CodeSequencer == SequencerRedis {
			logger.Warn("CODE_SEQUENCER=redis without REDIS_ADDR, using database counter", nil)
		}
		sequenceRepo = repository.NewProductCodeSequenceRepository(database)
	}

	logger.Info("Product code sequencer selected", map[string]interface{}{
		"sequencer": sequencerName(catalog.redis),
	})

	catalog.Products = service.NewProductService(productRepo, sequenceRepo)
	return catalog, nil
}

func sequencerName(client *redis.Client) string {
	if client != nil {
		return SequencerRedis
	}
	return SequencerDatabase
}

// Close releases the Redis client when one was opened.
func (c *Catalog) Close() error {
	return pkgredis.Close(c.redis)
}
