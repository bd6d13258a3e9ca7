package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-lab/internal/application/inventory"
	"github.com/jhoicas/inventario-lab/internal/application/usecase"
	"github.com/jhoicas/inventario-lab/internal/domain/repository"
	"github.com/jhoicas/inventario-lab/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-lab/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-lab/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-lab/internal/interfaces/http"
	"github.com/jhoicas/inventario-lab/pkg/config"
	"github.com/jhoicas/inventario-lab/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	loc, err := cfg.Inventory.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria del inventario")
	}
	clock := inventory.SystemClock(loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		txRunner    inventory.TxRunner
		productRepo repository.ProductRepository
		movRepo     repository.MovementRepository
	)
	switch cfg.DB.Driver {
	case "memory":
		store := memory.NewStore(cfg.Inventory.LockTimeout)
		txRunner, productRepo, movRepo = store, store.Products(), store.Movements()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner = postgres.NewTxRunner(pool, cfg.Inventory.LockTimeout)
		productRepo = postgres.NewProductRepository(pool)
		movRepo = postgres.NewMovementRepository(pool)
	}

	m := metrics.New()
	movementUC := inventory.NewMovementUseCase(txRunner, clock, m)
	historyUC := inventory.NewHistoryUseCase(productRepo, movRepo)
	sweepUC := inventory.NewStatusSweepUseCase(txRunner, productRepo, clock, log.Component("status_sweep"), m)

	var readSweeper usecase.StatusSweeper
	if cfg.Inventory.SweepOnRead {
		readSweeper = sweepUC
	}
	productUC := usecase.NewProductUseCase(productRepo, readSweeper, clock, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Laboratorio API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		Movements:   movementUC,
		History:     historyUC,
		StatusSweep: sweepUC,
		JWTSecret:   cfg.JWT.Secret,
		Logger:      log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})
	if cfg.Inventory.SweepInterval > 0 {
		g.Go(func() error {
			runSweepLoop(gctx, sweepUC, cfg.Inventory.SweepInterval, log)
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("servidor HTTP finalizado")
	}
	log.Info().Msg("aplicación detenida")
}

// runSweepLoop barre al arrancar y luego en cada tick hasta que se cancele ctx.
func runSweepLoop(ctx context.Context, sweep *inventory.StatusSweepUseCase, every time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if changed, err := sweep.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("barrido periódico de estados")
		} else if changed > 0 {
			log.Info().Int("changed", changed).Msg("barrido periódico de estados")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
