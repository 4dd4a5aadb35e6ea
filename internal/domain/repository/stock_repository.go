package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// StockRepository puerto para el saldo por producto×sucursal.
// Las escrituras solo se hacen dentro de una transacción del ledger.
type StockRepository interface {
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
	// Devuelve (nil, nil) si la fila no existe.
	GetForUpdate(ctx context.Context, productID, branchID string) (*entity.StockLevel, error)
	// CreateIfMissing inserta la fila con cantidad 0 si no existe (primer movimiento del par).
	CreateIfMissing(ctx context.Context, productID, branchID string) error
	UpdateQuantity(ctx context.Context, productID, branchID string, quantity int64) error
	Get(ctx context.Context, productID, branchID string) (*entity.StockLevel, error)
	ListByBranch(ctx context.Context, branchID string) ([]entity.BranchStock, error)
}
