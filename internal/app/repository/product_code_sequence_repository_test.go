package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/khatrisoftware/alankar-backend/internal/app/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductCodeSequenceRepository_StartsAtOne(t *testing.T) {
	testDB, _ := setupProductTest(t)
	seqRepo := NewProductCodeSequenceRepository(testDB)

	next, err := seqRepo.Next(context.Background(), model.CategoryRing)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)

	next, err = seqRepo.Next(context.Background(), model.CategoryRing)
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)

	// Categories are independent.
	next, err = seqRepo.Next(context.Background(), model.CategoryAnklet)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)
}

func TestProductCodeSequenceRepository_FollowsExistingCodes(t *testing.T) {
	testDB, repo := setupProductTest(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newProduct("KA-RG999", "Nine", model.CategoryRing)))
	require.NoError(t, repo.Create(ctx, newProduct("KA-RG1000", "Thousand", model.CategoryRing)))
	require.NoError(t, repo.Create(ctx, newProduct("KA-NK007", "Other category", model.CategoryNecklace)))

	seqRepo := NewProductCodeSequenceRepository(testDB)
	next, err := seqRepo.Next(ctx, model.CategoryRing)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), next)
}

func TestProductCodeSequenceRepository_NeverReissuesAfterDelete(t *testing.T) {
	testDB, repo := setupProductTest(t)
	ctx := context.Background()
	seqRepo := NewProductCodeSequenceRepository(testDB)

	first, err := seqRepo.Next(ctx, model.CategoryBangle)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, newProduct(model.FormatProductCode(model.CategoryBangle, first), "Bangle", model.CategoryBangle)))

	_, err = repo.DeleteByCodes(ctx, []string{model.FormatProductCode(model.CategoryBangle, first)})
	require.NoError(t, err)

	next, err := seqRepo.Next(ctx, model.CategoryBangle)
	require.NoError(t, err)
	assert.Equal(t, first+1, next)
}

func TestProductCodeSequenceRepository_OversizedImportedCode(t *testing.T) {
	testDB, repo := setupProductTest(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newProduct("KA-RG123456789012345678901", "Imported", model.CategoryRing)))

	seqRepo := NewProductCodeSequenceRepository(testDB)
	_, err := seqRepo.Next(ctx, model.CategoryRing)
	assert.ErrorIs(t, err, ErrSequenceExhausted)
}

func setupRedisSequence(t *testing.T) (ProductCodeSequenceRepository, ProductRepository, *miniredis.Miniredis) {
	_, repo := setupProductTest(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisProductCodeSequenceRepository(client, repo), repo, mr
}

func TestRedisProductCodeSequenceRepository_Increments(t *testing.T) {
	seqRepo, _, mr := setupRedisSequence(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		next, err := seqRepo.Next(ctx, model.CategoryChain)
		require.NoError(t, err)
		assert.Equal(t, want, next)
	}

	stored, err := mr.Get("catalog:code-seq:CH")
	require.NoError(t, err)
	assert.Equal(t, "3", stored)
}

func TestRedisProductCodeSequenceRepository_JumpsToFloor(t *testing.T) {
	seqRepo, repo, _ := setupRedisSequence(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newProduct("KA-TL041", "Tilhari", model.CategoryTilhari)))

	next, err := seqRepo.Next(ctx, model.CategoryTilhari)
	require.NoError(t, err)
	assert.Equal(t, int64(42), next)

	next, err = seqRepo.Next(ctx, model.CategoryTilhari)
	require.NoError(t, err)
	assert.Equal(t, int64(43), next)
}

func TestRedisProductCodeSequenceRepository_RedisDown(t *testing.T) {
	seqRepo, _, mr := setupRedisSequence(t)
	mr.Close()

	_, err := seqRepo.Next(context.Background(), model.CategoryRing)
	assert.Error(t, err)
}
