package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// SellItemRequest ítem del carrito.
type SellItemRequest struct {
	ProductID string `json:"product_id"`
	Qty       int64  `json:"qty"`
}

// SellRequest venta; sucursal y cajero salen del token.
type SellRequest struct {
	Items         []SellItemRequest `json:"items"`
	PaymentMethod string            `json:"payment_method"`
}

// SaleLineDTO línea de venta.
type SaleLineDTO struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleDTO venta con líneas.
type SaleDTO struct {
	ID            string          `json:"id"`
	BranchID      string          `json:"branch_id"`
	UserID        string          `json:"user_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Lines         []SaleLineDTO   `json:"lines"`
}

func ToSaleDTO(s *entity.Sale) SaleDTO {
	lines := make([]SaleLineDTO, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, SaleLineDTO{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}
	return SaleDTO{
		ID:            s.ID,
		BranchID:      s.BranchID,
		UserID:        s.UserID,
		TotalAmount:   s.TotalAmount,
		PaymentMethod: s.PaymentMethod,
		Status:        s.Status,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		Lines:         lines,
	}
}
