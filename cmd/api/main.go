package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/conecta-api/internal/application/access"
	appanalytics "github.com/jhoicas/conecta-api/internal/application/analytics"
	"github.com/jhoicas/conecta-api/internal/application/auth"
	"github.com/jhoicas/conecta-api/internal/application/ports"
	"github.com/jhoicas/conecta-api/internal/application/provisioning"
	"github.com/jhoicas/conecta-api/internal/application/usecase"
	"github.com/jhoicas/conecta-api/internal/infrastructure/cache"
	"github.com/jhoicas/conecta-api/internal/infrastructure/identity/gotrue"
	"github.com/jhoicas/conecta-api/internal/infrastructure/identity/local"
	"github.com/jhoicas/conecta-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/conecta-api/internal/interfaces/http"
	"github.com/jhoicas/conecta-api/pkg/config"
	"github.com/jhoicas/conecta-api/pkg/logger"
	"github.com/jhoicas/conecta-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("identity", cfg.Identity.Provider).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	store := postgres.NewStore(pool)

	var idp ports.IdentityProvider
	switch cfg.Identity.Provider {
	case config.IdentityLocal:
		idp = local.NewProvider(pool, local.TokenConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		})
	default:
		idp = gotrue.NewClient(gotrue.Config{
			BaseURL:        cfg.Identity.SupabaseURL,
			AnonKey:        cfg.Identity.AnonKey,
			ServiceRoleKey: cfg.Identity.ServiceRoleKey,
			Timeout:        10 * time.Second,
		}, log.Component("gotrue"))
	}

	// Redis es opcional: sin él no hay caché de planes ni revocación local de tokens.
	var (
		planCache ports.PlanCache
		denylist  ports.TokenDenylist
	)
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		planCache = cache.NewPlanCache(rdb, cfg.Redis.PlanCacheTTL)
		denylist = cache.NewTokenDenylist(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: sin caché de planes ni revocación de tokens")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	provisioningMetrics := metrics.NewProvisioningMetrics(reg)
	readMetrics := metrics.NewReadMetrics(reg)

	gate := access.NewGate(store, log.Component("access"))
	authUC := auth.NewAuthUseCase(idp, store, denylist, auth.JWTConfig{Secret: cfg.JWT.Secret}, log.Component("auth"))
	provisioningSvc := provisioning.NewService(store, idp, gate, provisioningMetrics, log.Component("provisioning"))
	customerUC := usecase.NewCustomerUseCase(store, gate, readMetrics, log.Component("customers"))
	workerUC := usecase.NewWorkerUseCase(store, gate, readMetrics, log.Component("workers"))
	ticketUC := usecase.NewTicketUseCase(store, gate, readMetrics, log.Component("tickets"))
	planUC := usecase.NewPlanUseCase(store, planCache, readMetrics, log.Component("plans"))
	dashboardUC := appanalytics.NewDashboardUseCase(gate, customerUC, workerUC, ticketUC)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		Provisioning: provisioningSvc,
		CustomerUC:   customerUC,
		WorkerUC:     workerUC,
		PlanUC:       planUC,
		TicketUC:     ticketUC,
		Dashboard:    dashboardUC,
		Gate:         gate,
		Gatherer:     reg,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
