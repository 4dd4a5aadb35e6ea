package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// Engine registra y anula ventas. Es dueño de la transacción: cabecera, líneas y
// cada salida de stock se confirman juntas o no se confirma nada.
type Engine struct {
	txRunner    inventory.TxRunner
	ledger      StockLedger
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	receipts    ReceiptGenerator
	tracer      trace.Tracer
	log         zerolog.Logger
	now         func() time.Time
}

// NewEngine construye el motor. saleRepo y productRepo son de lectura (fuera de transacción).
func NewEngine(
	txRunner inventory.TxRunner,
	ledger StockLedger,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	receipts ReceiptGenerator,
	tracer trace.Tracer,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		txRunner:    txRunner,
		ledger:      ledger,
		saleRepo:    saleRepo,
		productRepo: productRepo,
		receipts:    receipts,
		tracer:      tracer,
		log:         log.With().Str("component", "sale_engine").Logger(),
		now:         time.Now,
	}
}

// SellItem producto y cantidad de una línea.
type SellItem struct {
	ProductID string
	Quantity  int64
}

// SellInput venta en caja. BranchID y UserID vienen del actor ya autenticado.
type SellInput struct {
	BranchID      string
	UserID        string
	Items         []SellItem
	PaymentMethod string
}

// Sell valida, resuelve precios en un solo lote, inserta cabecera y líneas y descuenta
// stock por línea en el orden recibido. Cualquier falla revierte la venta completa.
func (e *Engine) Sell(ctx context.Context, in SellInput) (*entity.Sale, error) {
	if err := validateSell(in); err != nil {
		return nil, err
	}
	ctx, span := e.tracer.Start(ctx, "sales.Sell", trace.WithAttributes(
		attribute.String("branch_id", in.BranchID),
		attribute.String("user_id", in.UserID),
		attribute.Int("items", len(in.Items)),
	))
	defer span.End()

	now := e.now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		BranchID:      in.BranchID,
		UserID:        in.UserID,
		PaymentMethod: in.PaymentMethod,
		Status:        entity.SaleStatusCompleted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := e.txRunner.Run(ctx, func(repos inventory.Repos) error {
		products, err := repos.Products.GetByIDs(ctx, uniqueProductIDs(in.Items))
		if err != nil {
			return err
		}

		lines := make([]entity.SaleLine, 0, len(in.Items))
		total := decimal.Zero
		for _, item := range in.Items {
			p, ok := products[item.ProductID]
			if !ok || p == nil {
				return &domain.ProductNotFoundError{ProductID: item.ProductID}
			}
			subtotal := p.SellPrice.Mul(decimal.NewFromInt(item.Quantity))
			lines = append(lines, entity.SaleLine{
				ID:        uuid.New().String(),
				SaleID:    sale.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: p.SellPrice,
				Subtotal:  subtotal,
			})
			total = total.Add(subtotal)
		}
		sale.TotalAmount = total

		if err := repos.Sales.Create(ctx, sale); err != nil {
			return err
		}
		saleID := sale.ID
		for i := range lines {
			if err := repos.Sales.CreateLine(ctx, &lines[i]); err != nil {
				return err
			}
			if _, err := e.ledger.ApplyStockChangeInTx(ctx, repos, inventory.StockChangeInput{
				ProductID:     lines[i].ProductID,
				BranchID:      sale.BranchID,
				Quantity:      lines[i].Quantity,
				Direction:     entity.DirectionOut,
				ReferenceType: entity.ReferenceSale,
				ReferenceID:   &saleID,
				UserID:        sale.UserID,
			}); err != nil {
				return err
			}
		}
		sale.Lines = lines
		return nil
	})
	if err != nil {
		e.fail(span, err, "registrar venta")
		return nil, err
	}

	e.ledger.InvalidateBranch(ctx, sale.BranchID)
	e.log.Info().
		Str("sale_id", sale.ID).
		Str("branch_id", sale.BranchID).
		Str("user_id", sale.UserID).
		Str("total", sale.TotalAmount.StringFixed(2)).
		Int("lines", len(sale.Lines)).
		Msg("venta registrada")
	return sale, nil
}

// Void anula una venta completada: devuelve al stock exactamente las cantidades
// de sus líneas y marca la cabecera como void. Anular dos veces es un error.
// userID es quien anula (puede no ser el cajero que vendió).
func (e *Engine) Void(ctx context.Context, saleID, userID string) (*entity.Sale, error) {
	if saleID == "" {
		return nil, domain.NewValidation("sale_id", "es obligatorio")
	}
	ctx, span := e.tracer.Start(ctx, "sales.Void", trace.WithAttributes(
		attribute.String("sale_id", saleID),
		attribute.String("user_id", userID),
	))
	defer span.End()

	var sale *entity.Sale
	err := e.txRunner.Run(ctx, func(repos inventory.Repos) error {
		var err error
		sale, err = repos.Sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return &domain.SaleNotFoundError{SaleID: saleID}
		}
		if sale.Status == entity.SaleStatusVoid {
			return &domain.AlreadyVoidError{SaleID: saleID}
		}

		lines, err := repos.Sales.GetLines(ctx, saleID)
		if err != nil {
			return err
		}
		ref := saleID
		for _, line := range lines {
			if _, err := e.ledger.ApplyStockChangeInTx(ctx, repos, inventory.StockChangeInput{
				ProductID:     line.ProductID,
				BranchID:      sale.BranchID,
				Quantity:      line.Quantity,
				Direction:     entity.DirectionIn,
				ReferenceType: entity.ReferenceSaleVoid,
				ReferenceID:   &ref,
				UserID:        userID,
			}); err != nil {
				return err
			}
		}
		if err := repos.Sales.UpdateStatus(ctx, saleID, entity.SaleStatusVoid); err != nil {
			return err
		}
		sale.Status = entity.SaleStatusVoid
		sale.UpdatedAt = e.now()
		sale.Lines = lines
		return nil
	})
	if err != nil {
		e.fail(span, err, "anular venta")
		return nil, err
	}

	e.ledger.InvalidateBranch(ctx, sale.BranchID)
	e.log.Info().
		Str("sale_id", sale.ID).
		Str("branch_id", sale.BranchID).
		Str("user_id", userID).
		Int("lines", len(sale.Lines)).
		Msg("venta anulada")
	return sale, nil
}

// GetSale cabecera con sus líneas.
func (e *Engine) GetSale(ctx context.Context, saleID string) (*entity.Sale, error) {
	if saleID == "" {
		return nil, domain.NewValidation("sale_id", "es obligatorio")
	}
	sale, err := e.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, &domain.SaleNotFoundError{SaleID: saleID}
	}
	lines, err := e.saleRepo.GetLines(ctx, saleID)
	if err != nil {
		return nil, err
	}
	sale.Lines = lines
	return sale, nil
}

// Receipt genera el PDF del recibo. Devuelve bytes y nombre de archivo sugerido.
func (e *Engine) Receipt(ctx context.Context, saleID string) ([]byte, string, error) {
	sale, err := e.GetSale(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	ids := make([]string, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		ids = append(ids, l.ProductID)
	}
	products, err := e.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, "", err
	}
	lines := make([]ReceiptLine, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		rl := ReceiptLine{SaleLine: l}
		if p, ok := products[l.ProductID]; ok && p != nil {
			rl.SKU = p.SKU
			rl.ProductName = p.Name
		}
		lines = append(lines, rl)
	}
	pdf, err := e.receipts.GenerateReceiptPDF(ctx, sale, lines)
	if err != nil {
		return nil, "", fmt.Errorf("generate receipt: %w", err)
	}
	return pdf, "recibo-" + sale.ID + ".pdf", nil
}

func (e *Engine) fail(span trace.Span, err error, op string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	if domain.IsClientError(err) {
		e.log.Warn().Err(err).Msg(op + ": rechazada")
		return
	}
	e.log.Error().Err(err).Msg(op + ": falló")
}

func validateSell(in SellInput) error {
	if in.BranchID == "" {
		return domain.NewValidation("branch_id", "es obligatorio")
	}
	if in.UserID == "" {
		return domain.NewValidation("user_id", "es obligatorio")
	}
	if len(in.Items) == 0 {
		return domain.NewValidation("items", "debe tener al menos un ítem")
	}
	for i, item := range in.Items {
		if item.ProductID == "" {
			return domain.NewValidation(fmt.Sprintf("items[%d].product_id", i), "es obligatorio")
		}
		if item.Quantity <= 0 {
			return domain.NewValidation(fmt.Sprintf("items[%d].qty", i), "debe ser mayor que cero")
		}
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return domain.NewValidation("payment_method", "debe ser cash, debit, transfer o qris")
	}
	return nil
}

func uniqueProductIDs(items []SellItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}
