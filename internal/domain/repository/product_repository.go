package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// ProductRepository lectura del catálogo de productos (colaborador externo para el núcleo).
type ProductRepository interface {
	// GetByIDs resuelve varios productos en una sola consulta; los ausentes no aparecen en el mapa.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	Create(ctx context.Context, product *entity.Product) error
}
