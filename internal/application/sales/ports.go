package sales

import (
	"context"

	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// StockLedger lo que el motor de ventas necesita del ledger: cambios dentro de su transacción
// e invalidación de caché después del Commit.
type StockLedger interface {
	ApplyStockChangeInTx(ctx context.Context, repos inventory.Repos, in inventory.StockChangeInput) (inventory.StockChangeResult, error)
	InvalidateBranch(ctx context.Context, branchID string)
}

// ReceiptLine línea del recibo con los datos del producto para imprimir.
type ReceiptLine struct {
	entity.SaleLine
	SKU         string
	ProductName string
}

// ReceiptGenerator genera el recibo de una venta (PDF).
type ReceiptGenerator interface {
	GenerateReceiptPDF(ctx context.Context, sale *entity.Sale, lines []ReceiptLine) ([]byte, error)
}
