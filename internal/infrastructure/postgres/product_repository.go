package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lectura del catálogo (products).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const selectProduct = `
	SELECT id, company_id, COALESCE(category_id::text, ''), sku, name, base_price, sell_price, created_at, updated_at
	FROM products`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.CompanyID, &p.CategoryID, &p.SKU, &p.Name, &p.BasePrice, &p.SellPrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByIDs resuelve todos los ids en una sola consulta (id = ANY($1)).
// Los ids que no son UUID se omiten: no pueden existir en la tabla.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, selectProduct+` WHERE id = ANY($1::uuid[])`, valid)
	if err != nil {
		return nil, domain.Storage("get products", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Storage("scan product", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storage("get products", err)
	}
	return out, nil
}

// Create inserta un producto; SKU duplicado en la empresa devuelve ErrConflict.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (id, company_id, category_id, sku, name, base_price, sell_price, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, now(), now())`,
		p.ID, p.CompanyID, p.CategoryID, p.SKU, p.Name, p.BasePrice, p.SellPrice,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sku %s ya existe: %w", p.SKU, domain.ErrConflict)
		}
		return domain.Storage("insert product", err)
	}
	return nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
