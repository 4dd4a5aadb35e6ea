package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo cabecera (sales) y líneas (sale_lines) de venta.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, branch_id, user_id, total_amount, payment_method, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.BranchID, s.UserID, s.TotalAmount, s.PaymentMethod, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return domain.Storage("insert sale", err)
	}
	return nil
}

// CreateLine persiste una línea con el precio congelado.
func (r *SaleRepo) CreateLine(ctx context.Context, l *entity.SaleLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sale_lines (id, sale_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.SaleID, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal,
	)
	if err != nil {
		return domain.Storage("insert sale line", err)
	}
	return nil
}

const selectSale = `
	SELECT id, branch_id, user_id, total_amount, payment_method, status, created_at, updated_at
	FROM sales WHERE id = $1`

// GetByID cabecera sin líneas; (nil, nil) si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, selectSale, id, "get sale")
}

// GetForUpdate bloquea la cabecera hasta el fin de la tx.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, selectSale+` FOR UPDATE`, id, "get sale for update")
}

func (r *SaleRepo) get(ctx context.Context, query, id, op string) (*entity.Sale, error) {
	if !isUUID(id) {
		return nil, nil
	}
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.BranchID, &s.UserID, &s.TotalAmount, &s.PaymentMethod, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Storage(op, err)
	}
	return &s, nil
}

// GetLines líneas en orden de inserción.
func (r *SaleRepo) GetLines(ctx context.Context, saleID string) ([]entity.SaleLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price, subtotal
		FROM sale_lines WHERE sale_id = $1
		ORDER BY seq`, saleID)
	if err != nil {
		return nil, domain.Storage("list sale lines", err)
	}
	defer rows.Close()

	var out []entity.SaleLine
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, domain.Storage("scan sale line", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storage("list sale lines", err)
	}
	return out, nil
}

// UpdateStatus único cambio permitido sobre una venta.
func (r *SaleRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE sales SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return domain.Storage("update sale status", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.SaleNotFoundError{SaleID: id}
	}
	return nil
}
