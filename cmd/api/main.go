package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/pos-api/docs"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/infrastructure/cache"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/pos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pos-api/internal/interfaces/http"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
	"github.com/jhoicas/pos-api/pkg/telemetry"
)

const version = "0.1.0"

// @title                       POS API
// @version                     0.1.0
// @description                 Ledger de stock por sucursal y ventas de caja.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Token JWT: Bearer <token>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		panic("configuración inválida: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	defer log.Close()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreBackend).
		Msg("iniciando aplicación")

	ctx := context.Background()

	tp, shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		log.Fatal().Err(err).Msg("telemetría")
	}
	tracer := tp.Tracer("github.com/jhoicas/pos-api")

	// Almacenamiento: PostgreSQL en producción; memoria para demos y desarrollo local.
	var (
		txRunner inventory.TxRunner
		repos    inventory.Repos
	)
	switch cfg.App.StoreBackend {
	case config.BackendMemory:
		store := memory.New()
		txRunner, repos = store, store.Repos()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("aplicar esquema")
			}
		}
		txRunner, repos = postgres.NewTxRunner(pool), postgres.ReposFor(pool)
	}

	// Caché del listado de stock por sucursal. Si Redis no responde se sigue sin caché.
	var stockCache inventory.StockCache = cache.NoopStockCache{}
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedisStockCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.StockTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, caché de stock deshabilitada")
			_ = rc.Close()
		} else {
			stockCache = rc
			defer rc.Close()
		}
		cancel()
	}

	ledger := inventory.NewLedger(txRunner, repos.Stock, repos.Movements, stockCache, tracer, log.Zerolog())
	engine := sales.NewEngine(
		txRunner, ledger, repos.Sales, repos.Products,
		infrapdf.NewMarotoReceiptGenerator(cfg.App.Name),
		tracer, log.Zerolog(),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:      ledger,
		Engine:      engine,
		JWTSecret:   cfg.JWT.Secret,
		AppName:     cfg.App.Name,
		Log:         log.Zerolog(),
		SwaggerSpec: docs.SwaggerJSON,
	})

	go func() {
		addr := cfg.HTTP.Addr()
		log.Info().Str("addr", addr).Msg("servidor HTTP escuchando")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("apagando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cerrar exportador de trazas")
	}
	log.Info().Msg("servidor detenido")
}
