package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// StockMovementRepository puerto append-only del historial de movimientos.
// No hay Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByProductBranch(ctx context.Context, productID, branchID string, limit int) ([]*entity.StockMovement, error)
	// SumSigned suma con signo todas las cantidades del par (in +, out -).
	SumSigned(ctx context.Context, productID, branchID string) (int64, error)
}
