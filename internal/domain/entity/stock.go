package entity

import "time"

// StockLevel saldo actual de un producto en una sucursal (una fila por producto×sucursal).
// Solo lo modifica el ledger de inventario; Quantity nunca es negativo.
type StockLevel struct {
	ProductID string
	BranchID  string
	Quantity  int64
	UpdatedAt time.Time
}

// BranchStock fila de listado: saldo + datos del producto (join).
type BranchStock struct {
	StockLevel
	SKU         string
	ProductName string
}
