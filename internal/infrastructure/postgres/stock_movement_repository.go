package postgres

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo historial append-only sobre stock_movements.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (id, product_id, branch_id, direction, quantity, reference_type, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.ProductID, m.BranchID, m.Direction, m.Quantity, m.ReferenceType, m.ReferenceID, m.CreatedAt,
	)
	if err != nil {
		return domain.Storage("insert stock movement", err)
	}
	return nil
}

// ListByProductBranch más reciente primero; usa el índice (product_id, branch_id, created_at).
func (r *StockMovementRepo) ListByProductBranch(ctx context.Context, productID, branchID string, limit int) ([]*entity.StockMovement, error) {
	if !isUUID(productID) {
		return nil, nil
	}
	query := `
		SELECT id, product_id, branch_id, direction, quantity, reference_type, reference_id, created_at
		FROM stock_movements
		WHERE product_id = $1 AND branch_id = $2
		ORDER BY created_at DESC, seq DESC`
	args := []any{productID, branchID}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Storage("list stock movements", err)
	}
	defer rows.Close()

	var out []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.BranchID, &m.Direction, &m.Quantity, &m.ReferenceType, &m.ReferenceID, &m.CreatedAt); err != nil {
			return nil, domain.Storage("scan stock movement", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storage("list stock movements", err)
	}
	return out, nil
}

// SumSigned reconstruye el saldo del par desde el historial.
func (r *StockMovementRepo) SumSigned(ctx context.Context, productID, branchID string) (int64, error) {
	var sum int64
	if !isUUID(productID) {
		return 0, nil
	}
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END), 0)::bigint
		FROM stock_movements
		WHERE product_id = $1 AND branch_id = $2`, productID, branchID).Scan(&sum)
	if err != nil {
		return 0, domain.Storage("sum stock movements", err)
	}
	return sum, nil
}
