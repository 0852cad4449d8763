package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/pos-api/internal/application/analytics"
	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/debts"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/application/returns"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/infrastructure/metrics"
	"github.com/jhoicas/pos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-api/internal/infrastructure/scheduler"
	"github.com/jhoicas/pos-api/internal/infrastructure/sequence"
	httpRouter "github.com/jhoicas/pos-api/internal/interfaces/http"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// storage lo que cambia entre Postgres y el modo demo en memoria.
type storage struct {
	txRunner  ports.TxRunner
	repos     repository.Repos
	users     repository.UserRepository
	analytics repository.AnalyticsRepository
	close     func()
}

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
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.close()

	var numbers ports.NumberGenerator = sequence.NewTimestampGenerator()
	if cfg.Redis.Addr != "" {
		client, err := sequence.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, numeración por timestamp")
		} else {
			defer client.Close()
			numbers = sequence.NewRedisGenerator(client, log.Component("sequence"))
		}
	} else if cfg.App.Storage == "memory" {
		numbers = sequence.NewLocalGenerator()
	}

	var (
		prom    *metrics.Prometheus
		counter ports.Metrics = ports.NopMetrics{}
	)
	if cfg.HTTP.MetricsEnabled {
		prom = metrics.New("pos")
		counter = prom
	}

	ledger := inventory.NewStockLedger(counter)
	salesUC := sales.NewUseCase(store.txRunner, ledger, numbers, cfg.POS.InvoicePrefix, store.repos.Sales, counter, log.Component("sales"))
	receiptUC := sales.NewReceiptUseCase(store.repos, pdf.NewReceiptGenerator(), cfg.POS.StoreName)
	returnsUC := returns.NewUseCase(store.txRunner, ledger, numbers, cfg.POS.ReturnPrefix, store.repos, counter, log.Component("returns"))
	debtsUC := debts.NewUseCase(store.txRunner, store.repos, counter, log.Component("debts"))
	purchaseUC := inventory.NewPurchaseUseCase(store.txRunner, ledger, numbers, cfg.POS.PurchasePrefix, store.repos.Purchases, log.Component("purchases"))
	adjustmentUC := inventory.NewAdjustmentUseCase(store.txRunner, ledger, store.repos.Mutations, log.Component("inventory"))
	replenishmentUC := inventory.NewReplenishmentUseCase(store.repos.Products, store.analytics, log.Component("replenishment"))
	dashboardUC := appanalytics.NewDashboardUseCase(store.analytics)
	productUC := usecase.NewProductUseCase(store.txRunner, store.repos.Products, store.repos.Variants)
	customerUC := usecase.NewCustomerUseCase(store.repos.Customers)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	created, err := authUC.EnsureAdmin(ctx, cfg.App.AdminUsername, cfg.App.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("crear admin inicial")
	}
	if created {
		log.Info().Str("username", cfg.App.AdminUsername).Msg("admin inicial creado")
	}

	jobs, err := scheduler.New(cfg.Scheduler.Timezone, log.Component("scheduler"))
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler")
	}
	if err := jobs.EveryLowStock(time.Duration(cfg.Scheduler.LowStockIntervalMinutes)*time.Minute, replenishmentUC); err != nil {
		log.Fatal().Err(err).Msg("programar monitor de stock bajo")
	}
	jobs.Start()
	defer jobs.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "POS API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger no encontrado, /docs desactivado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		ProductUC:     productUC,
		CustomerUC:    customerUC,
		SalesUC:       salesUC,
		ReceiptUC:     receiptUC,
		ReturnsUC:     returnsUC,
		DebtsUC:       debtsUC,
		PurchaseUC:    purchaseUC,
		AdjustmentUC:  adjustmentUC,
		Replenishment: replenishmentUC,
		DashboardUC:   dashboardUC,
		JWTSecret:     cfg.JWT.Secret,
		ServiceName:   cfg.App.Name,
		Log:           log,
		Metrics:       prom,
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

// openStorage abre Postgres (y migra si DB_AUTO_MIGRATE) o el store en memoria.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.Storage == "memory" {
		log.Warn().Msg("modo demo: datos en memoria, se pierden al reiniciar")
		mem := memory.New()
		return &storage{
			txRunner:  mem,
			repos:     mem.Repos(),
			users:     mem.Users(),
			analytics: mem.Analytics(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	return &storage{
		txRunner:  postgres.NewTxRunner(pool),
		repos:     postgres.NewRepos(pool),
		users:     postgres.NewUserRepository(pool),
		analytics: postgres.NewAnalyticsRepository(pool),
		close:     pool.Close,
	}, nil
}
