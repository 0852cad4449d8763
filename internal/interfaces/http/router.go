package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appanalytics "github.com/jhoicas/pos-api/internal/application/analytics"
	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/debts"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/returns"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/metrics"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	ProductUC     *usecase.ProductUseCase
	CustomerUC    *usecase.CustomerUseCase
	SalesUC       *sales.UseCase
	ReceiptUC     *sales.ReceiptUseCase
	ReturnsUC     *returns.UseCase
	DebtsUC       *debts.UseCase
	PurchaseUC    *inventory.PurchaseUseCase
	AdjustmentUC  *inventory.AdjustmentUseCase
	Replenishment *inventory.ReplenishmentUseCase
	DashboardUC   *appanalytics.DashboardUseCase
	JWTSecret     string
	ServiceName   string
	Log           *logger.Logger
	Metrics       *metrics.Prometheus // nil = sin /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	val := NewValidator()
	errs := NewErrorMapper(log.Component("http"))

	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api")
	authRequired := AuthMiddleware(deps.JWTSecret)
	adminOnly := RequireRole(entity.RoleAdmin)
	stockRoles := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)

	// Auth: login público, registro solo admin
	authHandler := NewAuthHandler(deps.AuthUC, val, errs)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/register", authRequired, adminOnly, authHandler.Register)

	protected := api.Group("/", authRequired)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, val, errs)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", stockRoles, productHandler.Create)
	products.Put("/:id", stockRoles, productHandler.Update)
	products.Post("/:id/variants", stockRoles, productHandler.AddVariant)
	products.Put("/variants/:variantId", stockRoles, productHandler.UpdateVariant)

	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.DebtsUC, val, errs)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Get("/:id/debts", customerHandler.Debts)

	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SalesUC, deps.ReceiptUC, val, errs)
	returnHandler := NewReturnHandler(deps.ReturnsUC, val, errs)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/invoice/:number", saleHandler.GetByInvoice)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/returns", returnHandler.ListBySale)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)
	salesGroup.Post("/:id/cancel", adminOnly, saleHandler.Cancel)

	returnsGroup := protected.Group("/returns")
	returnsGroup.Get("/lookup/:invoice", returnHandler.Lookup)
	returnsGroup.Post("/", returnHandler.Create)
	returnsGroup.Get("/:id", returnHandler.GetByID)
	returnsGroup.Post("/:id/cancel", adminOnly, returnHandler.Cancel)

	debtsGroup := protected.Group("/debts")
	debtHandler := NewDebtHandler(deps.DebtsUC, val, errs)
	debtsGroup.Get("/:id", debtHandler.GetByID)
	debtsGroup.Get("/:id/payments", debtHandler.Payments)
	debtsGroup.Post("/:id/payments", debtHandler.Pay)
	debtsGroup.Post("/:id/mark-paid", debtHandler.MarkPaid)

	inventoryHandler := NewInventoryHandler(deps.PurchaseUC, deps.AdjustmentUC, deps.Replenishment, val, errs)
	purchases := protected.Group("/purchases", stockRoles)
	purchases.Post("/", inventoryHandler.ReceivePurchase)
	purchases.Get("/", inventoryHandler.ListPurchases)
	purchases.Get("/:id", inventoryHandler.GetPurchase)
	purchases.Post("/:id/cancel", adminOnly, inventoryHandler.CancelPurchase)

	invGroup := protected.Group("/inventory")
	invGroup.Post("/adjustments", stockRoles, inventoryHandler.AdjustStock)
	invGroup.Post("/supplier-returns", stockRoles, inventoryHandler.ReturnToSupplier)
	invGroup.Get("/products/:id/mutations", inventoryHandler.Mutations)
	invGroup.Get("/replenishment-list", stockRoles, inventoryHandler.GetReplenishmentList)

	dashboard := protected.Group("/dashboard", adminOnly)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, errs)
	dashboard.Get("/summary", dashboardHandler.GetSummary)
}
