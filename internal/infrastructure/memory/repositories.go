package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var (
	_ repository.StockRepository         = (*stockRepo)(nil)
	_ repository.StockMovementRepository = (*movementRepo)(nil)
	_ repository.SaleRepository          = (*saleRepo)(nil)
	_ repository.ProductRepository       = (*productRepo)(nil)
)

// ── Stock ─────────────────────────────────────────────────────────────────────

type stockRepo struct{ with access }

// GetForUpdate en memoria no bloquea por fila: la transacción completa ya es exclusiva.
func (r *stockRepo) GetForUpdate(ctx context.Context, productID, branchID string) (*entity.StockLevel, error) {
	return r.Get(ctx, productID, branchID)
}

func (r *stockRepo) Get(_ context.Context, productID, branchID string) (*entity.StockLevel, error) {
	var out *entity.StockLevel
	err := r.with(func(d *data) error {
		if s, ok := d.stocks[stockKey{productID, branchID}]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

// CreateIfMissing exige que el producto exista, igual que la FK de product_stocks en PostgreSQL.
func (r *stockRepo) CreateIfMissing(_ context.Context, productID, branchID string) error {
	return r.with(func(d *data) error {
		if _, ok := d.products[productID]; !ok {
			return &domain.ProductNotFoundError{ProductID: productID}
		}
		k := stockKey{strings.Clone(productID), strings.Clone(branchID)}
		if _, ok := d.stocks[k]; !ok {
			d.stocks[k] = entity.StockLevel{ProductID: k.productID, BranchID: k.branchID, UpdatedAt: time.Now()}
		}
		return nil
	})
}

func (r *stockRepo) UpdateQuantity(_ context.Context, productID, branchID string, quantity int64) error {
	return r.with(func(d *data) error {
		k := stockKey{productID, branchID}
		s, ok := d.stocks[k]
		if !ok {
			return domain.Storage("update stock", errors.New("fila de stock inexistente"))
		}
		if quantity < 0 {
			return domain.Storage("update stock", errors.New("cantidad negativa"))
		}
		s.Quantity = quantity
		s.UpdatedAt = time.Now()
		d.stocks[k] = s
		return nil
	})
}

func (r *stockRepo) ListByBranch(_ context.Context, branchID string) ([]entity.BranchStock, error) {
	var out []entity.BranchStock
	err := r.with(func(d *data) error {
		for k, s := range d.stocks {
			if k.branchID != branchID {
				continue
			}
			p := d.products[k.productID]
			out = append(out, entity.BranchStock{StockLevel: s, SKU: p.SKU, ProductName: p.Name})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, err
}

// ── Movimientos ───────────────────────────────────────────────────────────────

type movementRepo struct{ with access }

// Create guarda una copia propia del movimiento: el historial no comparte memoria con el caller.
func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.with(func(d *data) error {
		mv := *m
		mv.ID = strings.Clone(m.ID)
		mv.ProductID = strings.Clone(m.ProductID)
		mv.BranchID = strings.Clone(m.BranchID)
		if m.ReferenceID != nil {
			ref := strings.Clone(*m.ReferenceID)
			mv.ReferenceID = &ref
		}
		d.movements = append(d.movements, mv)
		return nil
	})
}

func (r *movementRepo) ListByProductBranch(_ context.Context, productID, branchID string, limit int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.with(func(d *data) error {
		// más reciente primero: recorre al revés el orden de inserción
		for i := len(d.movements) - 1; i >= 0; i-- {
			m := d.movements[i]
			if m.ProductID != productID || m.BranchID != branchID {
				continue
			}
			out = append(out, &m)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) SumSigned(_ context.Context, productID, branchID string) (int64, error) {
	var sum int64
	err := r.with(func(d *data) error {
		for _, m := range d.movements {
			if m.ProductID == productID && m.BranchID == branchID {
				sum += m.SignedQuantity()
			}
		}
		return nil
	})
	return sum, err
}

// ── Ventas ────────────────────────────────────────────────────────────────────

type saleRepo struct{ with access }

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	return r.with(func(d *data) error {
		if _, ok := d.sales[sale.ID]; ok {
			return domain.Storage("create sale", errors.New("id duplicado"))
		}
		h := *sale
		h.Lines = nil
		d.sales[sale.ID] = h
		return nil
	})
}

func (r *saleRepo) CreateLine(_ context.Context, line *entity.SaleLine) error {
	return r.with(func(d *data) error {
		if _, ok := d.sales[line.SaleID]; !ok {
			return domain.Storage("create sale line", errors.New("venta inexistente"))
		}
		d.lines[line.SaleID] = append(d.lines[line.SaleID], *line)
		return nil
	})
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.with(func(d *data) error {
		if s, ok := d.sales[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *saleRepo) GetLines(_ context.Context, saleID string) ([]entity.SaleLine, error) {
	var out []entity.SaleLine
	err := r.with(func(d *data) error {
		out = append([]entity.SaleLine(nil), d.lines[saleID]...)
		return nil
	})
	return out, err
}

func (r *saleRepo) UpdateStatus(_ context.Context, id, status string) error {
	return r.with(func(d *data) error {
		s, ok := d.sales[id]
		if !ok {
			return domain.Storage("update sale status", errors.New("venta inexistente"))
		}
		s.Status = status
		s.UpdatedAt = time.Now()
		d.sales[s.ID] = s
		return nil
	})
}

// ── Productos ─────────────────────────────────────────────────────────────────

type productRepo struct{ with access }

func (r *productRepo) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	err := r.with(func(d *data) error {
		for _, id := range ids {
			if p, ok := d.products[id]; ok {
				out[id] = &p
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.with(func(d *data) error {
		if _, ok := d.products[p.ID]; ok {
			return domain.ErrConflict
		}
		for _, existing := range d.products {
			if existing.CompanyID == p.CompanyID && existing.SKU == p.SKU {
				return domain.ErrConflict
			}
		}
		d.products[p.ID] = *p
		return nil
	})
}
