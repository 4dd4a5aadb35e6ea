package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jhoicas/pos-api/docs"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/cache"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/pos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/pos-api/pkg/jwt"
)

const (
	productCafe = "11111111-2222-3333-4444-555555555555"
	otherBranch = "00000000-0000-0000-0000-0000000000b2"
	unknownSale = "00000000-0000-0000-0000-00000000dead"
	unknownProd = "11111111-2222-3333-4444-00000000dead"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// buildPOSApp arma el router completo sobre el store en memoria con un producto a 2500.
func buildPOSApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.New()
	repos := store.Repos()
	tracer := noop.NewTracerProvider().Tracer("test")

	require.NoError(t, repos.Products.Create(context.Background(), &entity.Product{
		ID: productCafe, CompanyID: testCompanyID, SKU: "CAF-250", Name: "Café 250g", SellPrice: decimal.NewFromInt(2500),
	}))

	ledger := inventory.NewLedger(store, repos.Stock, repos.Movements, cache.NoopStockCache{}, tracer, zerolog.Nop())
	engine := sales.NewEngine(store, ledger, repos.Sales, repos.Products, pdf.NewMarotoReceiptGenerator("Tienda Test"), tracer, zerolog.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:    ledger,
		Engine:    engine,
		JWTSecret: testJWTSecret,
		AppName:   "pos-api-test",
		Log:       zerolog.Nop(),

		SwaggerSpec: docs.SwaggerJSON,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Code
}

// receive carga stock inicial como admin en la sucursal de test.
func receive(t *testing.T, app *fiber.App, qty int64) {
	t.Helper()
	resp, body := call(t, app, http.MethodPost, "/api/stock", tokenForRole(t, apphttp.RoleAdmin), dto.StockReceiptRequest{
		ProductID: productCafe, Quantity: qty,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
}

func sell(t *testing.T, app *fiber.App, qty int64) (*http.Response, []byte) {
	t.Helper()
	return call(t, app, http.MethodPost, "/api/sales", tokenForRole(t, apphttp.RoleCashier), dto.SellRequest{
		Items:         []dto.SellItemRequest{{ProductID: productCafe, Qty: qty}},
		PaymentMethod: entity.PaymentCash,
	})
}

func branchQty(t *testing.T, app *fiber.App) int64 {
	t.Helper()
	resp, body := call(t, app, http.MethodGet, "/api/stock", tokenForRole(t, apphttp.RoleCashier), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out struct {
		Stocks []dto.StockDTO `json:"stocks"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Stocks, 1)
	return out.Stocks[0].Quantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de caja
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth_RespondeOK(t *testing.T) {
	app := buildPOSApp(t)
	resp, body := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "pos-api-test")
}

func TestVentaAnulacionYRecibo_FlujoCompleto(t *testing.T) {
	app := buildPOSApp(t)
	receive(t, app, 10)

	resp, body := sell(t, app, 3)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var sale dto.SaleDTO
	require.NoError(t, json.Unmarshal(body, &sale))
	assert.True(t, decimal.NewFromInt(7500).Equal(sale.TotalAmount))
	assert.Equal(t, testBranchID, sale.BranchID, "la venta se registra en la sucursal del token")
	assert.Equal(t, testUserID, sale.UserID)
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, int64(7), branchQty(t, app))

	resp, body = call(t, app, http.MethodGet, "/api/sales/"+sale.ID+"/receipt", tokenForRole(t, apphttp.RoleCashier), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "recibo-"+sale.ID+".pdf")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	// el cajero no puede anular
	resp, _ = call(t, app, http.MethodPost, "/api/sales/"+sale.ID+"/void", tokenForRole(t, apphttp.RoleCashier), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = call(t, app, http.MethodPost, "/api/sales/"+sale.ID+"/void", tokenForRole(t, apphttp.RoleManager), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var voided dto.SaleDTO
	require.NoError(t, json.Unmarshal(body, &voided))
	assert.Equal(t, entity.SaleStatusVoid, voided.Status)
	assert.Equal(t, int64(10), branchQty(t, app))

	resp, body = call(t, app, http.MethodPost, "/api/sales/"+sale.ID+"/void", tokenForRole(t, apphttp.RoleManager), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_VOID", errorCode(t, body))
}

func TestSell_StockInsuficiente_Retorna409(t *testing.T) {
	app := buildPOSApp(t)
	receive(t, app, 2)

	resp, body := sell(t, app, 3)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, body))
	assert.Equal(t, int64(2), branchQty(t, app))
}

func TestSell_ErroresDeCliente(t *testing.T) {
	app := buildPOSApp(t)
	receive(t, app, 5)
	cashierTok := tokenForRole(t, apphttp.RoleCashier)

	cases := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"sin ítems", dto.SellRequest{PaymentMethod: entity.PaymentCash}, http.StatusBadRequest, "VALIDATION"},
		{"cantidad cero", dto.SellRequest{Items: []dto.SellItemRequest{{ProductID: productCafe, Qty: 0}}, PaymentMethod: entity.PaymentCash}, http.StatusBadRequest, "VALIDATION"},
		{"medio de pago desconocido", dto.SellRequest{Items: []dto.SellItemRequest{{ProductID: productCafe, Qty: 1}}, PaymentMethod: "bitcoin"}, http.StatusBadRequest, "VALIDATION"},
		{"producto inexistente", dto.SellRequest{Items: []dto.SellItemRequest{{ProductID: unknownProd, Qty: 1}}, PaymentMethod: entity.PaymentCash}, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := call(t, app, http.MethodPost, "/api/sales", cashierTok, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode, string(body))
			assert.Equal(t, tc.code, errorCode(t, body))
		})
	}
	assert.Equal(t, int64(5), branchQty(t, app), "ningún error deja rastro en el stock")
}

func TestSell_CuerpoInvalido_Retorna400(t *testing.T) {
	app := buildPOSApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewBufferString("{no-es-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, apphttp.RoleCashier))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSale_Inexistente_Retorna404(t *testing.T) {
	app := buildPOSApp(t)
	resp, body := call(t, app, http.MethodGet, "/api/sales/"+unknownSale, tokenForRole(t, apphttp.RoleCashier), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock
// ──────────────────────────────────────────────────────────────────────────────

func TestOpname_AjustaYRegistraMovimiento(t *testing.T) {
	app := buildPOSApp(t)
	receive(t, app, 10)
	managerTok := tokenForRole(t, apphttp.RoleManager)

	physical := int64(8)
	resp, body := call(t, app, http.MethodPost, "/api/stock/opname", managerTok, dto.OpnameRequest{ProductID: productCafe, PhysicalQty: &physical})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var res dto.OpnameResponse
	require.NoError(t, json.Unmarshal(body, &res))
	assert.False(t, res.Noop)
	assert.Equal(t, int64(10), res.PreviousQty)
	assert.Equal(t, int64(8), res.NewQty)
	assert.Equal(t, entity.DirectionOut, res.Direction)

	resp, body = call(t, app, http.MethodGet, "/api/stock/movements?product_id="+productCafe, managerTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hist struct {
		Total     int                    `json:"total"`
		Movements []dto.StockMovementDTO `json:"movements"`
	}
	require.NoError(t, json.Unmarshal(body, &hist))
	require.Equal(t, 2, hist.Total)
	assert.Equal(t, entity.ReferenceOpname, hist.Movements[0].ReferenceType, "el más reciente primero")

	resp, body = call(t, app, http.MethodGet, "/api/stock/verify?product_id="+productCafe, managerTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var check dto.LedgerCheckDTO
	require.NoError(t, json.Unmarshal(body, &check))
	assert.True(t, check.Consistent)
	assert.Equal(t, int64(8), check.MovementSum)
}

func TestOpname_SinConteo_Retorna400(t *testing.T) {
	app := buildPOSApp(t)
	resp, body := call(t, app, http.MethodPost, "/api/stock/opname", tokenForRole(t, apphttp.RoleManager), fiber.Map{"product_id": productCafe})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

func TestReceive_CajeroNoPuedeCargarStock(t *testing.T) {
	app := buildPOSApp(t)
	resp, _ := call(t, app, http.MethodPost, "/api/stock", tokenForRole(t, apphttp.RoleCashier), dto.StockReceiptRequest{ProductID: productCafe, Quantity: 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestReceive_TipoDeReferenciaInvalido_Retorna400(t *testing.T) {
	app := buildPOSApp(t)
	resp, body := call(t, app, http.MethodPost, "/api/stock", tokenForRole(t, apphttp.RoleAdmin), dto.StockReceiptRequest{
		ProductID: productCafe, Quantity: 1, ReferenceType: entity.ReferenceSale,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

func TestStock_SucursalAjenaSoloParaAdmin(t *testing.T) {
	app := buildPOSApp(t)

	resp, body := call(t, app, http.MethodGet, "/api/stock?branch_id="+otherBranch, tokenForRole(t, apphttp.RoleCashier), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "BRANCH_FORBIDDEN", errorCode(t, body))

	resp, _ = call(t, app, http.MethodGet, "/api/stock?branch_id="+otherBranch, tokenForRole(t, apphttp.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPost, "/api/stock", tokenForRole(t, apphttp.RoleManager), dto.StockReceiptRequest{
		ProductID: productCafe, BranchID: otherBranch, Quantity: 1,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStock_EntradaDeProductoInexistente_Retorna404(t *testing.T) {
	app := buildPOSApp(t)
	resp, body := call(t, app, http.MethodPost, "/api/stock", tokenForRole(t, apphttp.RoleManager), dto.StockReceiptRequest{
		ProductID: unknownProd, Quantity: 4,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	resp, body = call(t, app, http.MethodGet, "/api/stock", tokenForRole(t, apphttp.RoleCashier), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"total":0`)
}

func TestStock_TokenSinSucursal_Retorna400(t *testing.T) {
	app := buildPOSApp(t)
	tok := actorToken(t, pkgjwt.Actor{UserID: testUserID, Role: apphttp.RoleCashier})
	resp, body := call(t, app, http.MethodGet, "/api/stock", tok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas por sucursal
// ──────────────────────────────────────────────────────────────────────────────

func TestVenta_SucursalAjenaRetorna403(t *testing.T) {
	app := buildPOSApp(t)
	receive(t, app, 5)
	resp, body := sell(t, app, 2)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var sale dto.SaleDTO
	require.NoError(t, json.Unmarshal(body, &sale))

	foreign := actorToken(t, pkgjwt.Actor{UserID: testUserID, BranchID: otherBranch, CompanyID: testCompanyID, Role: apphttp.RoleManager})
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/sales/" + sale.ID},
		{http.MethodGet, "/api/sales/" + sale.ID + "/receipt"},
		{http.MethodPost, "/api/sales/" + sale.ID + "/void"},
	} {
		resp, body := call(t, app, tc.method, tc.path, foreign, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, tc.path)
		assert.Equal(t, "FORBIDDEN", errorCode(t, body), tc.path)
	}

	// la anulación rechazada no tocó ni la venta ni el stock
	resp, body = call(t, app, http.MethodGet, "/api/sales/"+sale.ID, tokenForRole(t, apphttp.RoleCashier), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.SaleDTO
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, entity.SaleStatusCompleted, got.Status)
	assert.Equal(t, int64(3), branchQty(t, app))

	admin := actorToken(t, pkgjwt.Actor{UserID: testUserID, BranchID: otherBranch, CompanyID: testCompanyID, Role: apphttp.RoleAdmin})
	resp, _ = call(t, app, http.MethodGet, "/api/sales/"+sale.ID, admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "admin ve ventas de cualquier sucursal")
}

func TestVoid_ReferenciaDelMovimientoSobreviveAOtrasPeticiones(t *testing.T) {
	app := buildPOSApp(t)
	receive(t, app, 5)
	resp, body := sell(t, app, 1)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var sale dto.SaleDTO
	require.NoError(t, json.Unmarshal(body, &sale))

	managerTok := tokenForRole(t, apphttp.RoleManager)
	resp, body = call(t, app, http.MethodPost, "/api/sales/"+sale.ID+"/void", managerTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	// peticiones con rutas del mismo largo reutilizan los buffers de fasthttp
	for i := 0; i < 50; i++ {
		call(t, app, http.MethodGet, "/api/sales/ffffffff-ffff-ffff-ffff-ffffffffffff", managerTok, nil)
		call(t, app, http.MethodPost, "/api/sales/eeeeeeee-eeee-eeee-eeee-eeeeeeeeeeee/void", managerTok, nil)
	}

	resp, body = call(t, app, http.MethodGet, "/api/stock/movements?product_id="+productCafe, managerTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out struct {
		Movements []dto.StockMovementDTO `json:"movements"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	var voidRef *string
	for _, m := range out.Movements {
		if m.ReferenceType == entity.ReferenceSaleVoid {
			voidRef = m.ReferenceID
		}
	}
	require.NotNil(t, voidRef, "la anulación genera un movimiento sale_void")
	assert.Equal(t, sale.ID, *voidRef)

	resp, body = call(t, app, http.MethodGet, "/api/sales/"+sale.ID, managerTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var got dto.SaleDTO
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, entity.SaleStatusVoid, got.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Documentación
// ──────────────────────────────────────────────────────────────────────────────

func TestDocs_SirveSwaggerJSON(t *testing.T) {
	app := buildPOSApp(t)
	resp, body := call(t, app, http.MethodGet, "/docs/swagger.json", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Contains(t, doc.Paths, "/api/sales")
	assert.Contains(t, doc.Paths, "/api/sales/{id}/void")
	assert.Contains(t, doc.Paths, "/api/stock/opname")
}
