package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo. Para el núcleo es de solo lectura:
// se usa para validar existencia y tomar el precio de venta vigente.
type Product struct {
	ID         string
	CompanyID  string
	CategoryID string
	SKU        string
	Name       string
	BasePrice  decimal.Decimal // precio de compra
	SellPrice  decimal.Decimal // precio de venta
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
