package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TopProductResult resultado crudo del ranking de productos por ingreso.
type TopProductResult struct {
	ProductID    string
	SKU          string
	ProductName  string
	QtySoldBase  decimal.Decimal // unidades base vendidas
	GrossRevenue decimal.Decimal
	TotalCOGS    decimal.Decimal // Σ qty * cost_at_sale
}

// AnalyticsRepository consultas de solo lectura para el dashboard.
// Las ventas anuladas no cuentan; lo devuelto se descuenta del ingreso.
type AnalyticsRepository interface {
	// GetSalesMetrics devuelve ingresos netos de devoluciones y COGS en el rango.
	GetSalesMetrics(ctx context.Context, startDate, endDate time.Time) (revenue, cost decimal.Decimal, err error)

	// GetTopProducts devuelve los `limit` productos con mayor ingreso en el período.
	GetTopProducts(ctx context.Context, startDate, endDate time.Time, limit int) ([]TopProductResult, error)

	// GetOutstandingDebt suma el saldo de todas las deudas activas.
	GetOutstandingDebt(ctx context.Context) (decimal.Decimal, error)
}
