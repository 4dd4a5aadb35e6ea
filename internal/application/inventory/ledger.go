package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// Ledger es el único punto que muta stock: bloquea la fila producto×sucursal
// (SELECT FOR UPDATE), calcula el nuevo saldo y agrega exactamente un movimiento.
// La suma con signo de los movimientos de un par siempre iguala su saldo.
type Ledger struct {
	txRunner  TxRunner
	stockRepo repository.StockRepository
	movRepo   repository.StockMovementRepository
	cache     StockCache
	tracer    trace.Tracer
	log       zerolog.Logger
	now       func() time.Time
}

// NewLedger construye el ledger. stockRepo y movRepo son los repositorios de lectura
// (fuera de transacción); las escrituras siempre pasan por txRunner o por los Repos del caller.
func NewLedger(
	txRunner TxRunner,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	cache StockCache,
	tracer trace.Tracer,
	log zerolog.Logger,
) *Ledger {
	return &Ledger{
		txRunner:  txRunner,
		stockRepo: stockRepo,
		movRepo:   movRepo,
		cache:     cache,
		tracer:    tracer,
		log:       log.With().Str("component", "stock_ledger").Logger(),
		now:       time.Now,
	}
}

// StockChangeInput cambio direccional de cantidad.
type StockChangeInput struct {
	ProductID     string
	BranchID      string
	Quantity      int64
	Direction     string // entity.DirectionIn | entity.DirectionOut
	ReferenceType string
	ReferenceID   *string
	UserID        string // actor que origina el cambio; solo se registra en el log
}

// StockChangeResult saldo antes y después del cambio.
type StockChangeResult struct {
	PreviousQty int64
	NewQty      int64
}

// OpnameInput conteo físico de un producto en una sucursal.
type OpnameInput struct {
	ProductID   string
	BranchID    string
	PhysicalQty int64
	UserID      string
}

// OpnameResult resultado de la toma física. Adjusted=false: el conteo coincidía y no se escribió movimiento.
type OpnameResult struct {
	Adjusted    bool
	PreviousQty int64
	NewQty      int64
	Direction   string
	Difference  int64
}

// LedgerCheck compara el saldo contra la reconstrucción desde el historial.
type LedgerCheck struct {
	ProductID   string
	BranchID    string
	Quantity    int64
	MovementSum int64
	Consistent  bool
}

// ApplyStockChange abre su propia transacción, aplica el cambio y hace Commit o Rollback.
func (l *Ledger) ApplyStockChange(ctx context.Context, in StockChangeInput) (StockChangeResult, error) {
	if err := validateChange(in); err != nil {
		return StockChangeResult{}, err
	}
	ctx, span := l.tracer.Start(ctx, "inventory.ApplyStockChange", trace.WithAttributes(
		attribute.String("product_id", in.ProductID),
		attribute.String("branch_id", in.BranchID),
		attribute.String("direction", in.Direction),
		attribute.Int64("quantity", in.Quantity),
	))
	defer span.End()

	var res StockChangeResult
	err := l.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		res, err = l.ApplyStockChangeInTx(ctx, repos, in)
		return err
	})
	if err != nil {
		l.fail(span, err, "apply stock change")
		return StockChangeResult{}, err
	}
	l.InvalidateBranch(ctx, in.BranchID)
	return res, nil
}

// ApplyStockChangeInTx aplica el cambio dentro de la transacción del caller.
// Nunca hace Commit ni Rollback: un error aquí debe abortar la operación completa del caller.
func (l *Ledger) ApplyStockChangeInTx(ctx context.Context, repos Repos, in StockChangeInput) (StockChangeResult, error) {
	if err := validateChange(in); err != nil {
		return StockChangeResult{}, err
	}

	stock, err := l.lockOrCreate(ctx, repos.Stock, in.ProductID, in.BranchID)
	if err != nil {
		return StockChangeResult{}, err
	}

	prev := stock.Quantity
	var next int64
	switch in.Direction {
	case entity.DirectionIn:
		next = prev + in.Quantity
	case entity.DirectionOut:
		if prev < in.Quantity {
			return StockChangeResult{}, &domain.InsufficientStockError{
				ProductID: in.ProductID,
				BranchID:  in.BranchID,
				Available: prev,
				Requested: in.Quantity,
			}
		}
		next = prev - in.Quantity
	}

	if err := repos.Stock.UpdateQuantity(ctx, in.ProductID, in.BranchID, next); err != nil {
		return StockChangeResult{}, err
	}
	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     in.ProductID,
		BranchID:      in.BranchID,
		Direction:     in.Direction,
		Quantity:      in.Quantity,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		CreatedAt:     l.now(),
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return StockChangeResult{}, err
	}

	l.log.Info().
		Str("product_id", in.ProductID).
		Str("branch_id", in.BranchID).
		Str("direction", in.Direction).
		Str("reference_type", in.ReferenceType).
		Str("user_id", in.UserID).
		Int64("previous_qty", prev).
		Int64("new_qty", next).
		Msg("stock actualizado")
	return StockChangeResult{PreviousQty: prev, NewQty: next}, nil
}

// lockOrCreate bloquea la fila; si no existe la crea en 0 y la vuelve a bloquear.
func (l *Ledger) lockOrCreate(ctx context.Context, stockRepo repository.StockRepository, productID, branchID string) (*entity.StockLevel, error) {
	stock, err := stockRepo.GetForUpdate(ctx, productID, branchID)
	if err != nil {
		return nil, err
	}
	if stock != nil {
		return stock, nil
	}
	if err := stockRepo.CreateIfMissing(ctx, productID, branchID); err != nil {
		return nil, err
	}
	stock, err = stockRepo.GetForUpdate(ctx, productID, branchID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.Storage("lock stock", errors.New("la fila de stock no existe tras insertarla"))
	}
	return stock, nil
}

// AdjustStockFromOpname reconcilia el saldo con el conteo físico en su propia transacción.
func (l *Ledger) AdjustStockFromOpname(ctx context.Context, in OpnameInput) (OpnameResult, error) {
	if err := validateOpname(in); err != nil {
		return OpnameResult{}, err
	}
	ctx, span := l.tracer.Start(ctx, "inventory.AdjustStockFromOpname", trace.WithAttributes(
		attribute.String("product_id", in.ProductID),
		attribute.String("branch_id", in.BranchID),
		attribute.Int64("physical_qty", in.PhysicalQty),
	))
	defer span.End()

	var res OpnameResult
	err := l.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		res, err = l.AdjustStockFromOpnameInTx(ctx, repos, in)
		return err
	})
	if err != nil {
		l.fail(span, err, "adjust stock from opname")
		return OpnameResult{}, err
	}
	if res.Adjusted {
		l.InvalidateBranch(ctx, in.BranchID)
	}
	return res, nil
}

// AdjustStockFromOpnameInTx igual que AdjustStockFromOpname pero dentro de la transacción del caller.
// Una toma física no puede reconciliar stock que nunca se inicializó.
func (l *Ledger) AdjustStockFromOpnameInTx(ctx context.Context, repos Repos, in OpnameInput) (OpnameResult, error) {
	if err := validateOpname(in); err != nil {
		return OpnameResult{}, err
	}
	stock, err := repos.Stock.GetForUpdate(ctx, in.ProductID, in.BranchID)
	if err != nil {
		return OpnameResult{}, err
	}
	if stock == nil {
		return OpnameResult{}, &domain.StockNotFoundError{ProductID: in.ProductID, BranchID: in.BranchID}
	}

	diff := in.PhysicalQty - stock.Quantity
	if diff == 0 {
		return OpnameResult{Adjusted: false, PreviousQty: stock.Quantity, NewQty: stock.Quantity}, nil
	}

	dir := entity.DirectionIn
	qty := diff
	if diff < 0 {
		dir = entity.DirectionOut
		qty = -diff
	}
	res, err := l.ApplyStockChangeInTx(ctx, repos, StockChangeInput{
		ProductID:     in.ProductID,
		BranchID:      in.BranchID,
		Quantity:      qty,
		Direction:     dir,
		ReferenceType: entity.ReferenceOpname,
		UserID:        in.UserID,
	})
	if err != nil {
		return OpnameResult{}, err
	}
	return OpnameResult{
		Adjusted:    true,
		PreviousQty: res.PreviousQty,
		NewQty:      res.NewQty,
		Direction:   dir,
		Difference:  diff,
	}, nil
}

// ListStock saldos de una sucursal con nombre y SKU, servidos desde la caché cuando hay.
func (l *Ledger) ListStock(ctx context.Context, branchID string) ([]entity.BranchStock, error) {
	if branchID == "" {
		return nil, domain.NewValidation("branch_id", "es obligatorio")
	}
	// la generación se lee antes que la BD: si un commit invalida en el medio,
	// el listado queda guardado bajo una generación que ya nadie consulta.
	cached, gen, ok, cacheErr := l.cache.GetBranch(ctx, branchID)
	if cacheErr != nil {
		l.log.Warn().Err(cacheErr).Str("branch_id", branchID).Msg("caché de stock no disponible")
	} else if ok {
		return cached, nil
	}

	stocks, err := l.stockRepo.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if cacheErr == nil {
		if err := l.cache.SetBranch(ctx, branchID, gen, stocks); err != nil {
			l.log.Warn().Err(err).Str("branch_id", branchID).Msg("no se pudo guardar stock en caché")
		}
	}
	return stocks, nil
}

// ListMovements historial del par, más reciente primero. limit<=0 usa 50.
func (l *Ledger) ListMovements(ctx context.Context, productID, branchID string, limit int) ([]*entity.StockMovement, error) {
	if productID == "" {
		return nil, domain.NewValidation("product_id", "es obligatorio")
	}
	if branchID == "" {
		return nil, domain.NewValidation("branch_id", "es obligatorio")
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	return l.movRepo.ListByProductBranch(ctx, productID, branchID, limit)
}

// VerifyLedger reconstruye el saldo desde el historial y lo compara con el guardado.
func (l *Ledger) VerifyLedger(ctx context.Context, productID, branchID string) (LedgerCheck, error) {
	if productID == "" {
		return LedgerCheck{}, domain.NewValidation("product_id", "es obligatorio")
	}
	if branchID == "" {
		return LedgerCheck{}, domain.NewValidation("branch_id", "es obligatorio")
	}
	stock, err := l.stockRepo.Get(ctx, productID, branchID)
	if err != nil {
		return LedgerCheck{}, err
	}
	if stock == nil {
		return LedgerCheck{}, &domain.StockNotFoundError{ProductID: productID, BranchID: branchID}
	}
	sum, err := l.movRepo.SumSigned(ctx, productID, branchID)
	if err != nil {
		return LedgerCheck{}, err
	}
	check := LedgerCheck{
		ProductID:   productID,
		BranchID:    branchID,
		Quantity:    stock.Quantity,
		MovementSum: sum,
		Consistent:  stock.Quantity == sum,
	}
	if !check.Consistent {
		l.log.Error().
			Str("product_id", productID).
			Str("branch_id", branchID).
			Int64("quantity", stock.Quantity).
			Int64("movement_sum", sum).
			Msg("saldo no cuadra con el historial de movimientos")
	}
	return check, nil
}

// InvalidateBranch descarta el listado cacheado de la sucursal. Se llama después del Commit.
func (l *Ledger) InvalidateBranch(ctx context.Context, branchID string) {
	if err := l.cache.InvalidateBranch(ctx, branchID); err != nil {
		l.log.Warn().Err(err).Str("branch_id", branchID).Msg("no se pudo invalidar caché de stock")
	}
}

func (l *Ledger) fail(span trace.Span, err error, op string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	if domain.IsClientError(err) {
		l.log.Warn().Err(err).Msg(op + " rechazado")
		return
	}
	l.log.Error().Err(err).Msg(op + " falló")
}

func validateChange(in StockChangeInput) error {
	switch {
	case in.ProductID == "":
		return domain.NewValidation("product_id", "es obligatorio")
	case in.BranchID == "":
		return domain.NewValidation("branch_id", "es obligatorio")
	case in.Quantity <= 0:
		return domain.NewValidation("quantity", "debe ser mayor que cero")
	case !entity.ValidDirection(in.Direction):
		return domain.NewValidation("direction", "debe ser in u out")
	case !entity.ValidReferenceType(in.ReferenceType):
		return domain.NewValidation("reference_type", "no reconocido")
	}
	return nil
}

func validateOpname(in OpnameInput) error {
	switch {
	case in.ProductID == "":
		return domain.NewValidation("product_id", "es obligatorio")
	case in.BranchID == "":
		return domain.NewValidation("branch_id", "es obligatorio")
	case in.PhysicalQty < 0:
		return domain.NewValidation("physical_qty", "no puede ser negativo")
	}
	return nil
}
