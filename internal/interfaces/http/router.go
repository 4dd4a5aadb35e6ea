package http

import (
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.Ledger
	Engine    *sales.Engine
	JWTSecret string
	AppName   string
	Log       zerolog.Logger

	// SwaggerSpec swagger.json embebido; vacío = sin /docs.
	SwaggerSpec []byte
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Swagger UI: http://localhost:<port>/docs
	if len(deps.SwaggerSpec) > 0 {
		app.Use(swagger.New(swagger.Config{
			BasePath:    "/",
			FilePath:    "docs/swagger.json",
			FileContent: deps.SwaggerSpec,
			Path:        "docs",
			Title:       deps.AppName + " API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	// Todo /api requiere Bearer Token
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(RoleAdmin, RoleManager, RoleCashier)
	managers := RequireRole(RoleAdmin, RoleManager)

	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Ledger, deps.Log)
	stock.Get("/", anyRole, RequireBranchScope(), stockHandler.List)
	stock.Get("/movements", anyRole, RequireBranchScope(), stockHandler.Movements)
	stock.Get("/verify", anyRole, RequireBranchScope(), stockHandler.Verify)
	stock.Post("/", managers, stockHandler.Receive)
	stock.Post("/opname", managers, stockHandler.Opname)

	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.Engine, deps.Log)
	salesGroup.Post("/", anyRole, saleHandler.Sell)
	salesGroup.Get("/:id", anyRole, saleHandler.GetByID)
	salesGroup.Get("/:id/receipt", anyRole, saleHandler.Receipt)
	salesGroup.Post("/:id/void", managers, saleHandler.Void)
}
