package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// KPIs del día y del mes en curso, top productos del mes y cartera pendiente.
type DashboardSummaryDTO struct {
	// Día actual (00:00 – 23:59)
	TodaySales  decimal.Decimal `json:"today_sales"`
	TodayCOGS   decimal.Decimal `json:"today_cogs"`
	TodayMargin decimal.Decimal `json:"today_margin"`

	// Mes en curso (día 1 – hoy)
	MonthlySales  decimal.Decimal `json:"monthly_sales"`
	MonthlyCOGS   decimal.Decimal `json:"monthly_cogs"`
	MonthlyMargin decimal.Decimal `json:"monthly_margin"`

	TopProducts     []TopProductDTO `json:"top_products"`
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"` // suma de deudas activas

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}

// TopProductDTO producto en el widget del dashboard, cantidades en unidad base.
type TopProductDTO struct {
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	QuantitySold     decimal.Decimal `json:"quantity_sold"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"` // (revenue - cogs) / revenue * 100
}
