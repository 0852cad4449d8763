// Package analytics contiene los casos de uso de reportes del punto de venta.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

const dashboardTopProducts = 5 // productos en el widget del dashboard

// DashboardUseCase genera el resumen financiero del día y del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only). Las ventas anuladas
// no cuentan y lo devuelto se descuenta de ingresos y costo.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cuatro llamadas en paralelo:
//  1. GetSalesMetrics(hoy)         → TodaySales, TodayCOGS, TodayMargin
//  2. GetSalesMetrics(mes)         → MonthlySales, MonthlyCOGS, MonthlyMargin
//  3. GetTopProducts(mes, top 5)   → TopProducts
//  4. GetOutstandingDebt           → OutstandingDebt
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := todayEnd

	type metricsResult struct {
		revenue decimal.Decimal
		cost    decimal.Decimal
		err     error
	}
	type topResult struct {
		rows []repository.TopProductResult
		err  error
	}
	type debtResult struct {
		total decimal.Decimal
		err   error
	}

	todayCh := make(chan metricsResult, 1)
	monthCh := make(chan metricsResult, 1)
	topCh := make(chan topResult, 1)
	debtCh := make(chan debtResult, 1)

	go func() {
		rev, cost, err := uc.analyticsRepo.GetSalesMetrics(ctx, todayStart, todayEnd)
		todayCh <- metricsResult{rev, cost, err}
	}()
	go func() {
		rev, cost, err := uc.analyticsRepo.GetSalesMetrics(ctx, monthStart, monthEnd)
		monthCh <- metricsResult{rev, cost, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetTopProducts(ctx, monthStart, monthEnd, dashboardTopProducts)
		topCh <- topResult{rows, err}
	}()
	go func() {
		total, err := uc.analyticsRepo.GetOutstandingDebt(ctx)
		debtCh <- debtResult{total, err}
	}()

	today := <-todayCh
	month := <-monthCh
	top := <-topCh
	debt := <-debtCh

	if today.err != nil {
		return nil, fmt.Errorf("dashboard: métricas de hoy: %w", today.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: métricas del mes: %w", month.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: top productos: %w", top.err)
	}
	if debt.err != nil {
		return nil, fmt.Errorf("dashboard: cartera: %w", debt.err)
	}

	products := make([]dto.TopProductDTO, 0, len(top.rows))
	hundred := decimal.NewFromInt(100)
	for _, r := range top.rows {
		margin := decimal.Zero
		if r.GrossRevenue.IsPositive() {
			margin = r.GrossRevenue.Sub(r.TotalCOGS).Div(r.GrossRevenue).Mul(hundred).Round(2)
		}
		products = append(products, dto.TopProductDTO{
			ProductID:        r.ProductID,
			SKU:              r.SKU,
			ProductName:      r.ProductName,
			QuantitySold:     r.QtySoldBase,
			TotalRevenue:     r.GrossRevenue.Round(2),
			MarginPercentage: margin,
		})
	}

	return &dto.DashboardSummaryDTO{
		TodaySales:      today.revenue.Round(2),
		TodayCOGS:       today.cost.Round(2),
		TodayMargin:     today.revenue.Sub(today.cost).Round(2),
		MonthlySales:    month.revenue.Round(2),
		MonthlyCOGS:     month.cost.Round(2),
		MonthlyMargin:   month.revenue.Sub(month.cost).Round(2),
		TopProducts:     products,
		OutstandingDebt: debt.total.Round(2),
		DateLabel:       monthLabel(now),
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
