package entity

import "time"

// Dirección de un movimiento de inventario.
const (
	DirectionIn  = "in"  // entrada
	DirectionOut = "out" // salida
)

// Origen del movimiento (reference_type).
const (
	ReferenceOpening  = "opening"   // stock inicial
	ReferenceSale     = "sale"      // venta
	ReferenceSaleVoid = "sale_void" // anulación de venta
	ReferenceOpname   = "opname"    // toma física de inventario
	ReferencePurchase = "purchase"  // compra / recepción
)

// StockMovement registro inmutable de un cambio de cantidad y su causa.
// Quantity siempre positivo; el signo lo da Direction.
type StockMovement struct {
	ID            string
	ProductID     string
	BranchID      string
	Direction     string
	Quantity      int64
	ReferenceType string
	ReferenceID   *string // venta o ajuste que lo originó (puede ser nil)
	CreatedAt     time.Time
}

// SignedQuantity +Quantity para entradas, -Quantity para salidas.
func (m StockMovement) SignedQuantity() int64 {
	if m.Direction == DirectionOut {
		return -m.Quantity
	}
	return m.Quantity
}

// ValidDirection indica si d es in u out.
func ValidDirection(d string) bool {
	return d == DirectionIn || d == DirectionOut
}

// ValidReferenceType indica si t es un origen reconocido.
func ValidReferenceType(t string) bool {
	switch t {
	case ReferenceOpening, ReferenceSale, ReferenceSaleVoid, ReferenceOpname, ReferencePurchase:
		return true
	}
	return false
}
