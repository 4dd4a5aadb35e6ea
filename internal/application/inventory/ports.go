package inventory

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción de BD.
// Quien recibe un Repos no hace Commit ni Rollback: eso es del dueño de la transacción.
type Repos struct {
	Stock     repository.StockRepository
	Movements repository.StockMovementRepository
	Sales     repository.SaleRepository
	Products  repository.ProductRepository
}

// TxRunner ejecuta fn dentro de una transacción, con repos atados a ella.
// Commit si fn retorna nil; Rollback en cualquier otro caso (incluido ctx cancelado).
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}

// StockCache caché de lectura del listado de stock por sucursal.
// Cada sucursal tiene una generación que InvalidateBranch incrementa después de cada commit.
// GetBranch devuelve la generación vigente también en un miss; SetBranch guarda el listado
// bajo esa generación, así un listado leído antes de una invalidación nunca se vuelve a servir.
type StockCache interface {
	GetBranch(ctx context.Context, branchID string) (stocks []entity.BranchStock, generation int64, ok bool, err error)
	SetBranch(ctx context.Context, branchID string, generation int64, stocks []entity.BranchStock) error
	InvalidateBranch(ctx context.Context, branchID string) error
}
