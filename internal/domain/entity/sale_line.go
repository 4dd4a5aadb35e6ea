package entity

import "github.com/shopspring/decimal"

// SaleLine línea de detalle de una venta. UnitPrice es el precio al momento de vender.
type SaleLine struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
