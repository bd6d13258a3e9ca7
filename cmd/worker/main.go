package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-lab/internal/application/inventory"
	"github.com/jhoicas/inventario-lab/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-lab/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-lab/internal/jobs"
	"github.com/jhoicas/inventario-lab/pkg/config"
	"github.com/jhoicas/inventario-lab/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("worker")

	if cfg.DB.Driver != "postgres" {
		log.Fatal().Str("db_driver", cfg.DB.Driver).Msg("el worker requiere DB_DRIVER=postgres")
	}
	loc, err := cfg.Inventory.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria del inventario")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if err := jobs.PingRedis(ctx, redisOpts, 3*time.Second); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no responde; asynq reintentará")
	}

	m := metrics.New()
	clock := inventory.SystemClock(loc)
	sweepUC := inventory.NewStatusSweepUseCase(
		postgres.NewTxRunner(pool, cfg.Inventory.LockTimeout),
		postgres.NewProductRepository(pool),
		clock, log.Component("status_sweep"), m,
	)
	sweepJob := jobs.NewStatusSweepJob(sweepUC, log, m)

	cronTask, err := jobs.NewStatusSweepTask(time.Now().UTC(), "cron")
	if err != nil {
		log.Fatal().Err(err).Msg("tarea de barrido")
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    log,
		Location:  loc,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStatusSweep, Handler: sweepJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.Inventory.SweepCron, Task: cronTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar worker")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	if cfg.Worker.MetricsAddr != "" {
		app := newMetricsApp(cfg.App.Name+"-worker", m)
		g.Go(func() error {
			log.Info().Str("addr", cfg.Worker.MetricsAddr).Msg("métricas del worker")
			return app.Listen(cfg.Worker.MetricsAddr)
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado")
	}
	log.Info().Msg("worker detenido")
}

// newMetricsApp expone /health y /metrics del worker.
func newMetricsApp(service string, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{AppName: service, DisableStartupMessage: true})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": service})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	return app
}
