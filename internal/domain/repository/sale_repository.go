package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// SaleRepository puerto de persistencia para cabecera y líneas de venta.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateLine(ctx context.Context, line *entity.SaleLine) error
	// GetForUpdate bloquea la cabecera (evita doble anulación concurrente). (nil, nil) si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetLines(ctx context.Context, saleID string) ([]entity.SaleLine, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
