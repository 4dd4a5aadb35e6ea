package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// StockHandler expone el ledger de stock (protegido).
type StockHandler struct {
	ledger *inventory.Ledger
	log    zerolog.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *inventory.Ledger, log zerolog.Logger) *StockHandler {
	return &StockHandler{ledger: ledger, log: log}
}

// queryBranch ?branch_id= o la sucursal del token; RequireBranchScope ya validó el acceso.
func queryBranch(c *fiber.Ctx) string {
	if b := c.Query("branch_id"); b != "" {
		return b
	}
	return GetBranchID(c)
}

// List godoc
// @Summary      Stock por sucursal
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal (UUID). Vacío = la del token; otra sucursal solo admin."
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	stocks, err := h.ledger.ListStock(c.Context(), queryBranch(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":  len(stocks),
		"stocks": dto.ToStockDTOs(stocks),
	})
}

// Movements godoc
// @Summary      Historial de movimientos
// @Description  Movimientos de un producto en la sucursal, del más reciente al más antiguo.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true   "Producto (UUID)"
// @Param        branch_id   query  string  false  "Sucursal (UUID)"
// @Param        limit       query  int     false  "Máximo de filas (default 50)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	ms, err := h.ledger.ListMovements(c.Context(),
		c.Query("product_id"),
		queryBranch(c),
		c.QueryInt("limit", 50),
	)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":     len(ms),
		"movements": dto.ToStockMovementDTOs(ms),
	})
}

// Verify godoc
// @Summary      Verificar saldo contra movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true   "Producto (UUID)"
// @Param        branch_id   query  string  false  "Sucursal (UUID)"
// @Success      200  {object}  dto.LedgerCheckDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/verify [get]
func (h *StockHandler) Verify(c *fiber.Ctx) error {
	check, err := h.ledger.VerifyLedger(c.Context(), c.Query("product_id"), queryBranch(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.LedgerCheckDTO{
		ProductID:   check.ProductID,
		BranchID:    check.BranchID,
		Quantity:    check.Quantity,
		MovementSum: check.MovementSum,
		Consistent:  check.Consistent,
	})
}

// Receive godoc
// @Summary      Entrada de mercadería
// @Description  Suma stock con referencia opening (por defecto) o purchase.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockReceiptRequest  true  "product_id, branch_id (opcional), quantity, reference_type, reference_id"
// @Success      201   {object}  dto.StockChangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock [post]
func (h *StockHandler) Receive(c *fiber.Ctx) error {
	var in dto.StockReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	refType := in.ReferenceType
	if refType == "" {
		refType = entity.ReferenceOpening
	}
	if refType != entity.ReferenceOpening && refType != entity.ReferencePurchase {
		return writeError(c, h.log, domain.NewValidation("reference_type", "debe ser opening o purchase"))
	}
	var refID *string
	if in.ReferenceID != "" {
		refID = &in.ReferenceID
	}
	branchID, err := scopedBranch(c, in.BranchID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.ledger.ApplyStockChange(c.Context(), inventory.StockChangeInput{
		ProductID:     in.ProductID,
		BranchID:      branchID,
		Quantity:      in.Quantity,
		Direction:     entity.DirectionIn,
		ReferenceType: refType,
		ReferenceID:   refID,
		UserID:        GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.StockChangeResponse{
		ProductID:   in.ProductID,
		BranchID:    branchID,
		PreviousQty: res.PreviousQty,
		NewQty:      res.NewQty,
	})
}

// Opname godoc
// @Summary      Ajuste por conteo físico
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpnameRequest  true  "product_id, branch_id (opcional), physical_qty"
// @Success      200   {object}  dto.OpnameResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/opname [post]
func (h *StockHandler) Opname(c *fiber.Ctx) error {
	var in dto.OpnameRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.PhysicalQty == nil {
		return writeError(c, h.log, domain.NewValidation("physical_qty", "es obligatorio"))
	}
	branchID, err := scopedBranch(c, in.BranchID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.ledger.AdjustStockFromOpname(c.Context(), inventory.OpnameInput{
		ProductID:   in.ProductID,
		BranchID:    branchID,
		PhysicalQty: *in.PhysicalQty,
		UserID:      GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OpnameResponse{
		Noop:        !res.Adjusted,
		PreviousQty: res.PreviousQty,
		NewQty:      res.NewQty,
		Direction:   res.Direction,
		Difference:  res.Difference,
	})
}
