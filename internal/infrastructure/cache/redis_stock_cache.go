package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

const (
	branchKeyPrefix     = "pos:stock:branch:"
	generationKeyPrefix = "pos:stock:gen:"
)

var (
	_ inventory.StockCache = (*RedisStockCache)(nil)
	_ inventory.StockCache = NoopStockCache{}
)

// RedisStockCache guarda el listado de stock de cada sucursal como JSON con TTL.
type RedisStockCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStockCache crea el cliente. No conecta hasta el primer comando; usar Ping para verificar.
func NewRedisStockCache(addr, password string, db int, ttl time.Duration) *RedisStockCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisStockCache{client: client, ttl: ttl}
}

func (c *RedisStockCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisStockCache) Close() error {
	return c.client.Close()
}

// GetBranch lee la generación de la sucursal y luego el listado guardado bajo ella.
// Un miss devuelve igual la generación leída, que es la que debe usarse en SetBranch.
func (c *RedisStockCache) GetBranch(ctx context.Context, branchID string) ([]entity.BranchStock, int64, bool, error) {
	gen, err := c.client.Get(ctx, generationKey(branchID)).Int64()
	if errors.Is(err, redis.Nil) {
		gen = 0
	} else if err != nil {
		return nil, 0, false, fmt.Errorf("redis get generation: %w", err)
	}

	val, err := c.client.Get(ctx, branchKey(branchID, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis get: %w", err)
	}
	var stocks []entity.BranchStock
	if err := json.Unmarshal(val, &stocks); err != nil {
		return nil, 0, false, fmt.Errorf("decode cached stock: %w", err)
	}
	return stocks, gen, true, nil
}

// SetBranch guarda el listado bajo la generación indicada. Si la sucursal ya fue invalidada,
// la clave queda huérfana hasta que expira el TTL.
func (c *RedisStockCache) SetBranch(ctx context.Context, branchID string, generation int64, stocks []entity.BranchStock) error {
	payload, err := json.Marshal(stocks)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, branchKey(branchID, generation), payload, c.ttl).Err()
}

// InvalidateBranch avanza la generación (INCR); el listado anterior deja de ser visible.
func (c *RedisStockCache) InvalidateBranch(ctx context.Context, branchID string) error {
	return c.client.Incr(ctx, generationKey(branchID)).Err()
}

func generationKey(branchID string) string {
	return generationKeyPrefix + branchID
}

func branchKey(branchID string, generation int64) string {
	return branchKeyPrefix + branchID + ":" + strconv.FormatInt(generation, 10)
}
