package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/cache"
)

func TestNoopStockCache_NuncaHayHit(t *testing.T) {
	ctx := context.Background()
	c := cache.NoopStockCache{}

	require.NoError(t, c.SetBranch(ctx, "b1", 0, []entity.BranchStock{{SKU: "A"}}))
	got, _, ok, err := c.GetBranch(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.NoError(t, c.InvalidateBranch(ctx, "b1"))
}

func openRedis(t *testing.T) *cache.RedisStockCache {
	t.Helper()
	// Requiere un Redis real: POS_TEST_REDIS_ADDR=localhost:6379
	addr := os.Getenv("POS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("POS_TEST_REDIS_ADDR no definido")
	}
	c := cache.NewRedisStockCache(addr, "", 0, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(context.Background()))
	return c
}

func listing(branch string, qty int64) []entity.BranchStock {
	return []entity.BranchStock{{
		StockLevel:  entity.StockLevel{ProductID: "p1", BranchID: branch, Quantity: qty},
		SKU:         "SKU-1",
		ProductName: "Café",
	}}
}

func TestRedisStockCache_SetGetInvalidate(t *testing.T) {
	c := openRedis(t)
	ctx := context.Background()
	branch := "test-branch-" + time.Now().Format("150405.000000")

	_, gen, ok, err := c.GetBranch(ctx, branch)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.SetBranch(ctx, branch, gen, listing(branch, 7)))

	got, _, ok, err := c.GetBranch(ctx, branch)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].Quantity)
	assert.Equal(t, "Café", got[0].ProductName)

	require.NoError(t, c.InvalidateBranch(ctx, branch))
	_, _, ok, err = c.GetBranch(ctx, branch)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStockCache_ListadoLeidoAntesDeInvalidarNoSeSirve(t *testing.T) {
	c := openRedis(t)
	ctx := context.Background()
	branch := "test-branch-gen-" + time.Now().Format("150405.000000")

	_, oldGen, _, err := c.GetBranch(ctx, branch)
	require.NoError(t, err)

	// un commit invalida entre la lectura de BD y el guardado en caché
	require.NoError(t, c.InvalidateBranch(ctx, branch))
	require.NoError(t, c.SetBranch(ctx, branch, oldGen, listing(branch, 10)))

	_, gen, ok, err := c.GetBranch(ctx, branch)
	require.NoError(t, err)
	assert.False(t, ok, "el listado viejo queda bajo una generación vencida")
	assert.Equal(t, oldGen+1, gen)
}
