package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// ReplenishmentUseCase lista de reposición: productos bajo stock mínimo, priorizados por margen y rotación.
// También es la tarea periódica del monitor de stock bajo.
type ReplenishmentUseCase struct {
	products  repository.ProductRepository
	analytics repository.AnalyticsRepository
	log       *logger.Logger
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(products repository.ProductRepository, analytics repository.AnalyticsRepository, log *logger.Logger) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{products: products, analytics: analytics, log: log}
}

// GenerateReplenishmentList devuelve los productos con stock < mínimo, con cantidad sugerida
// (1.5 x mínimo - stock) y prioridad (1 = más urgente).
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	low, err := uc.products.ListBelowMinStock(ctx)
	if err != nil {
		return nil, err
	}
	if len(low) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	// Historial de 90 días; si falla se prioriza solo por déficit.
	end := time.Now()
	start := end.AddDate(0, 0, -90)
	top, err := uc.analytics.GetTopProducts(ctx, start, end, 500)
	if err != nil {
		uc.log.Warn().Err(err).Msg("reposición sin historial de ventas")
	}
	byID := make(map[string]repository.TopProductResult, len(top))
	for _, t := range top {
		byID[t.ProductID] = t
	}

	hundred := decimal.NewFromInt(100)
	factor := decimal.RequireFromString("1.5")
	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(low))
	for _, p := range low {
		ideal := p.MinStock.Mul(factor)
		suggested := ideal.Sub(p.Stock)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		var marginPct, sold decimal.Decimal
		if t, ok := byID[p.ID]; ok {
			sold = t.QtySoldBase
			if t.GrossRevenue.IsPositive() {
				marginPct = t.GrossRevenue.Sub(t.TotalCOGS).Div(t.GrossRevenue).Mul(hundred).Round(2)
			}
		}
		out = append(out, dto.ReplenishmentSuggestionDTO{
			ProductID:           p.ID,
			SKU:                 p.SKU,
			ProductName:         p.Name,
			BaseUnit:            p.BaseUnit,
			CurrentStock:        p.Stock,
			MinStock:            p.MinStock,
			IdealStock:          ideal,
			SuggestedOrderQty:   suggested,
			UnitCost:            p.AverageCost,
			EstimatedOrderCost:  suggested.Mul(p.AverageCost).Round(2),
			GrossMarginPct:      marginPct,
			UnitsSoldLast90Days: sold,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.GrossMarginPct.Equal(b.GrossMarginPct) {
			return a.GrossMarginPct.GreaterThan(b.GrossMarginPct)
		}
		if !a.UnitsSoldLast90Days.Equal(b.UnitsSoldLast90Days) {
			return a.UnitsSoldLast90Days.GreaterThan(b.UnitsSoldLast90Days)
		}
		return a.MinStock.Sub(a.CurrentStock).GreaterThan(b.MinStock.Sub(b.CurrentStock))
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}

// CheckLowStock tarea del scheduler: registra un warn por producto bajo mínimo.
func (uc *ReplenishmentUseCase) CheckLowStock(ctx context.Context) (int, error) {
	low, err := uc.products.ListBelowMinStock(ctx)
	if err != nil {
		uc.log.Error().Err(err).Msg("monitor de stock bajo")
		return 0, err
	}
	for _, p := range low {
		uc.log.Warn().
			Str("product", p.ID).
			Str("sku", p.SKU).
			Str("stock", p.Stock.String()).
			Str("min_stock", p.MinStock.String()).
			Msg("stock bajo mínimo")
	}
	return len(low), nil
}
