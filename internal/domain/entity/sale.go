package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	SaleStatusCompleted = "completed"
	SaleStatusVoid      = "void"
)

// Métodos de pago aceptados en caja.
const (
	PaymentCash     = "cash"
	PaymentDebit    = "debit"
	PaymentTransfer = "transfer"
	PaymentQRIS     = "qris"
)

// Sale cabecera de una venta. Se crea una vez por venta y solo cambia de estado al anularse.
type Sale struct {
	ID            string
	BranchID      string
	UserID        string
	TotalAmount   decimal.Decimal
	PaymentMethod string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Lines         []SaleLine
}

// ValidPaymentMethod indica si m es un método de pago soportado.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentDebit, PaymentTransfer, PaymentQRIS:
		return true
	}
	return false
}
