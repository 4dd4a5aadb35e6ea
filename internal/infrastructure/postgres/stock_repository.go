package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre product_stocks (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get saldo actual sin bloqueo; (nil, nil) si la fila no existe.
func (r *StockRepo) Get(ctx context.Context, productID, branchID string) (*entity.StockLevel, error) {
	return r.get(ctx, `
		SELECT product_id, branch_id, quantity, updated_at
		FROM product_stocks WHERE product_id = $1 AND branch_id = $2`, productID, branchID, "get stock")
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, branchID string) (*entity.StockLevel, error) {
	return r.get(ctx, `
		SELECT product_id, branch_id, quantity, updated_at
		FROM product_stocks WHERE product_id = $1 AND branch_id = $2
		FOR UPDATE`, productID, branchID, "get stock for update")
}

func (r *StockRepo) get(ctx context.Context, query, productID, branchID, op string) (*entity.StockLevel, error) {
	if !isUUID(productID) {
		return nil, nil
	}
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, productID, branchID).Scan(&s.ProductID, &s.BranchID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Storage(op, err)
	}
	return &s, nil
}

// CreateIfMissing inserta la fila en 0; si otra tx la creó primero no hace nada.
// La FK a products convierte un producto inexistente en ProductNotFoundError.
func (r *StockRepo) CreateIfMissing(ctx context.Context, productID, branchID string) error {
	if !isUUID(productID) {
		return &domain.ProductNotFoundError{ProductID: productID}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO product_stocks (product_id, branch_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, branch_id) DO NOTHING`, productID, branchID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.ProductNotFoundError{ProductID: productID}
		}
		return domain.Storage("create stock", err)
	}
	return nil
}

// UpdateQuantity fija la cantidad; el CHECK quantity >= 0 de la tabla es la última barrera.
func (r *StockRepo) UpdateQuantity(ctx context.Context, productID, branchID string, quantity int64) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE product_stocks SET quantity = $3, updated_at = now()
		WHERE product_id = $1 AND branch_id = $2`, productID, branchID, quantity)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Storage("update stock", fmt.Errorf("cantidad negativa rechazada por la DB: %w", err))
		}
		return domain.Storage("update stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Storage("update stock", errors.New("fila de stock inexistente"))
	}
	return nil
}

// ListByBranch saldos de la sucursal con SKU y nombre del producto, por product_id.
func (r *StockRepo) ListByBranch(ctx context.Context, branchID string) ([]entity.BranchStock, error) {
	rows, err := r.q.Query(ctx, `
		SELECT s.product_id, s.branch_id, s.quantity, s.updated_at,
		       COALESCE(p.sku, ''), COALESCE(p.name, '')
		FROM product_stocks s
		LEFT JOIN products p ON p.id = s.product_id
		WHERE s.branch_id = $1
		ORDER BY s.product_id`, branchID)
	if err != nil {
		return nil, domain.Storage("list stock", err)
	}
	defer rows.Close()

	var out []entity.BranchStock
	for rows.Next() {
		var b entity.BranchStock
		if err := rows.Scan(&b.ProductID, &b.BranchID, &b.Quantity, &b.UpdatedAt, &b.SKU, &b.ProductName); err != nil {
			return nil, domain.Storage("scan stock", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storage("list stock", err)
	}
	return out, nil
}
