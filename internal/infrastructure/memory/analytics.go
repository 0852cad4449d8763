package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregaciones sobre el estado en memoria, mismas reglas que la versión SQL.
type AnalyticsRepo struct{ s *Store }

// Analytics repositorio de lectura para el dashboard.
func (s *Store) Analytics() *AnalyticsRepo {
	return &AnalyticsRepo{s: s}
}

type lineAgg struct {
	productID string
	qtyBase   decimal.Decimal
	revenue   decimal.Decimal
	cost      decimal.Decimal
}

// lines recorre líneas vendidas en el rango, restando lo devuelto.
func (r *AnalyticsRepo) lines(from, to time.Time) []lineAgg {
	var out []lineAgg
	r.s.read(func(st *state) {
		returned := map[string]decimal.Decimal{}
		for _, ret := range st.returns {
			if ret.Status == entity.ReturnStatusCancelled {
				continue
			}
			for _, it := range ret.Items {
				returned[it.SaleItemID] = returned[it.SaleItemID].Add(it.Qty)
			}
		}
		for _, sale := range st.sales {
			if sale.Status == entity.SaleStatusCancelled || sale.CreatedAt.Before(from) || sale.CreatedAt.After(to) {
				continue
			}
			for _, it := range sale.Items {
				qty := it.Qty.Sub(returned[it.ID])
				out = append(out, lineAgg{
					productID: it.ProductID,
					qtyBase:   qty.Mul(it.UnitFactorAtSale),
					revenue:   qty.Mul(it.PriceAtSale),
					cost:      qty.Mul(it.CostAtSale),
				})
			}
		}
	})
	return out
}

func (r *AnalyticsRepo) GetSalesMetrics(_ context.Context, startDate, endDate time.Time) (decimal.Decimal, decimal.Decimal, error) {
	revenue, cost := decimal.Zero, decimal.Zero
	for _, l := range r.lines(startDate, endDate) {
		revenue = revenue.Add(l.revenue)
		cost = cost.Add(l.cost)
	}
	return revenue, cost, nil
}

func (r *AnalyticsRepo) GetTopProducts(_ context.Context, startDate, endDate time.Time, limit int) ([]repository.TopProductResult, error) {
	byProduct := map[string]*repository.TopProductResult{}
	for _, l := range r.lines(startDate, endDate) {
		row, ok := byProduct[l.productID]
		if !ok {
			row = &repository.TopProductResult{ProductID: l.productID}
			byProduct[l.productID] = row
		}
		row.QtySoldBase = row.QtySoldBase.Add(l.qtyBase)
		row.GrossRevenue = row.GrossRevenue.Add(l.revenue)
		row.TotalCOGS = row.TotalCOGS.Add(l.cost)
	}
	r.s.read(func(st *state) {
		for id, row := range byProduct {
			p := st.products[id]
			row.SKU, row.ProductName = p.SKU, p.Name
		}
	})
	list := make([]repository.TopProductResult, 0, len(byProduct))
	for _, row := range byProduct {
		list = append(list, *row)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].GrossRevenue.GreaterThan(list[j].GrossRevenue) })
	return page(list, limit, 0), nil
}

func (r *AnalyticsRepo) GetOutstandingDebt(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	r.s.read(func(st *state) {
		for _, d := range st.debts {
			if d.IsActive {
				total = total.Add(d.RemainingAmount)
			}
		}
	})
	return total, nil
}
