package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// SaleHandler ventas en caja (protegido).
type SaleHandler struct {
	engine *sales.Engine
	log    zerolog.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(engine *sales.Engine, log zerolog.Logger) *SaleHandler {
	return &SaleHandler{engine: engine, log: log}
}

// saleID copia el parámetro de ruta: fasthttp reutiliza el buffer al terminar la petición.
func saleID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

// loadScopedSale trae la venta y exige que sea de la sucursal del actor (admin ve todas).
func (h *SaleHandler) loadScopedSale(c *fiber.Ctx, id string) (*entity.Sale, error) {
	sale, err := h.engine.GetSale(c.Context(), id)
	if err != nil {
		return nil, err
	}
	if _, err := scopedBranch(c, sale.BranchID); err != nil {
		return nil, err
	}
	return sale, nil
}

// Sell godoc
// @Summary      Registrar venta
// @Description  Vende en la sucursal del token, a nombre del usuario del token. Todo o nada.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SellRequest  true  "items (product_id, qty) y payment_method"
// @Success      201   {object}  dto.SaleDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Sell(c *fiber.Ctx) error {
	var in dto.SellRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]sales.SellItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, sales.SellItem{ProductID: it.ProductID, Quantity: it.Qty})
	}
	sale, err := h.engine.Sell(c.Context(), sales.SellInput{
		BranchID:      GetBranchID(c),
		UserID:        GetUserID(c),
		Items:         items,
		PaymentMethod: in.PaymentMethod,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToSaleDTO(sale))
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta (UUID)"
// @Success      200  {object}  dto.SaleDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.loadScopedSale(c, saleID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToSaleDTO(sale))
}

// Void godoc
// @Summary      Anular venta
// @Description  Devuelve al stock las cantidades de cada línea y marca la venta como void.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta (UUID)"
// @Success      200  {object}  dto.SaleDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/void [post]
func (h *SaleHandler) Void(c *fiber.Ctx) error {
	id := saleID(c)
	if _, err := h.loadScopedSale(c, id); err != nil {
		return writeError(c, h.log, err)
	}
	sale, err := h.engine.Void(c.Context(), id, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToSaleDTO(sale))
}

// Receipt godoc
// @Summary      Recibo PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta (UUID)"
// @Success      200  {file}    file
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	id := saleID(c)
	if _, err := h.loadScopedSale(c, id); err != nil {
		return writeError(c, h.log, err)
	}
	pdf, filename, err := h.engine.Receipt(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}
