package dto

import (
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// StockReceiptRequest entrada de mercadería (apertura o compra).
type StockReceiptRequest struct {
	ProductID     string `json:"product_id"`
	BranchID      string `json:"branch_id"`
	Quantity      int64  `json:"quantity"`
	ReferenceType string `json:"reference_type"` // opening (default) | purchase
	ReferenceID   string `json:"reference_id"`
}

// OpnameRequest conteo físico.
type OpnameRequest struct {
	ProductID   string `json:"product_id"`
	BranchID    string `json:"branch_id"`
	PhysicalQty *int64 `json:"physical_qty"`
}

// StockChangeResponse saldo antes/después.
type StockChangeResponse struct {
	ProductID   string `json:"product_id"`
	BranchID    string `json:"branch_id"`
	PreviousQty int64  `json:"previous_qty"`
	NewQty      int64  `json:"new_qty"`
}

// OpnameResponse resultado de la toma física; Noop=true si no hubo ajuste.
type OpnameResponse struct {
	Noop        bool   `json:"noop"`
	PreviousQty int64  `json:"previous_qty"`
	NewQty      int64  `json:"new_qty"`
	Direction   string `json:"direction,omitempty"`
	Difference  int64  `json:"difference"`
}

// StockDTO fila del listado de stock.
type StockDTO struct {
	ProductID   string    `json:"product_id"`
	BranchID    string    `json:"branch_id"`
	SKU         string    `json:"sku"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StockMovementDTO entrada del historial.
type StockMovementDTO struct {
	ID            string    `json:"id"`
	Direction     string    `json:"direction"`
	Quantity      int64     `json:"quantity"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   *string   `json:"reference_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// LedgerCheckDTO verificación saldo vs historial.
type LedgerCheckDTO struct {
	ProductID   string `json:"product_id"`
	BranchID    string `json:"branch_id"`
	Quantity    int64  `json:"quantity"`
	MovementSum int64  `json:"movement_sum"`
	Consistent  bool   `json:"consistent"`
}

func ToStockDTOs(in []entity.BranchStock) []StockDTO {
	out := make([]StockDTO, 0, len(in))
	for _, s := range in {
		out = append(out, StockDTO{
			ProductID:   s.ProductID,
			BranchID:    s.BranchID,
			SKU:         s.SKU,
			ProductName: s.ProductName,
			Quantity:    s.Quantity,
			UpdatedAt:   s.UpdatedAt,
		})
	}
	return out
}

func ToStockMovementDTOs(in []*entity.StockMovement) []StockMovementDTO {
	out := make([]StockMovementDTO, 0, len(in))
	for _, m := range in {
		out = append(out, StockMovementDTO{
			ID:            m.ID,
			Direction:     m.Direction,
			Quantity:      m.Quantity,
			ReferenceType: m.ReferenceType,
			ReferenceID:   m.ReferenceID,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out
}
