package cache

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// NoopStockCache caché deshabilitada: nunca hay hit y las escrituras se descartan.
type NoopStockCache struct{}

func (NoopStockCache) GetBranch(_ context.Context, _ string) ([]entity.BranchStock, int64, bool, error) {
	return nil, 0, false, nil
}

func (NoopStockCache) SetBranch(_ context.Context, _ string, _ int64, _ []entity.BranchStock) error {
	return nil
}

func (NoopStockCache) InvalidateBranch(_ context.Context, _ string) error {
	return nil
}
