package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// netLines líneas vendidas en el rango con la cantidad ya neta de devoluciones activas.
// Ventas anuladas fuera. $1 y $2 son el rango de fechas.
const netLines = `
	WITH returned AS (
	    SELECT ri.sale_item_id, SUM(ri.qty) AS qty
	    FROM customer_return_items ri
	    JOIN customer_returns cr ON cr.id = ri.return_id
	    WHERE cr.status <> 'cancelled'
	    GROUP BY ri.sale_item_id
	), lines AS (
	    SELECT
	        si.product_id,
	        si.qty - COALESCE(rt.qty, 0) AS net_qty,
	        si.price_at_sale,
	        si.cost_at_sale,
	        si.unit_factor_at_sale
	    FROM sales s
	    JOIN sale_items si    ON si.sale_id = s.id
	    LEFT JOIN returned rt ON rt.sale_item_id = si.id
	    WHERE s.status <> 'cancelled'
	      AND s.created_at BETWEEN $1 AND $2
	)`

// GetSalesMetrics devuelve ingresos netos y COGS del período.
// Usa COALESCE para devolver cero si no hay filas (período sin ventas).
func (r *AnalyticsRepo) GetSalesMetrics(ctx context.Context, startDate, endDate time.Time) (revenue, cost decimal.Decimal, err error) {
	const query = netLines + `
	SELECT
	    COALESCE(SUM(net_qty * price_at_sale), 0) AS revenue,
	    COALESCE(SUM(net_qty * cost_at_sale),  0) AS cost
	FROM lines`

	err = r.pool.QueryRow(ctx, query, startDate, endDate).Scan(&revenue, &cost)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("analytics.GetSalesMetrics: %w", err)
	}
	return revenue, cost, nil
}

// GetTopProducts devuelve los `limit` productos con mayor ingreso en el período.
func (r *AnalyticsRepo) GetTopProducts(ctx context.Context, startDate, endDate time.Time, limit int) ([]repository.TopProductResult, error) {
	const query = netLines + `
	SELECT
	    p.id                                           AS product_id,
	    p.sku,
	    p.name                                         AS product_name,
	    SUM(l.net_qty * l.unit_factor_at_sale)         AS qty_sold_base,
	    SUM(l.net_qty * l.price_at_sale)               AS gross_revenue,
	    SUM(l.net_qty * l.cost_at_sale)                AS total_cogs
	FROM lines l
	JOIN products p ON p.id = l.product_id
	GROUP BY p.id, p.sku, p.name
	ORDER BY gross_revenue DESC
	LIMIT $3`

	rows, err := r.pool.Query(ctx, query, startDate, endDate, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopProducts: %w", err)
	}
	defer rows.Close()

	results := []repository.TopProductResult{}
	for rows.Next() {
		var item repository.TopProductResult
		if err := rows.Scan(
			&item.ProductID,
			&item.SKU,
			&item.ProductName,
			&item.QtySoldBase,
			&item.GrossRevenue,
			&item.TotalCOGS,
		); err != nil {
			return nil, fmt.Errorf("analytics.GetTopProducts scan: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics.GetTopProducts rows: %w", err)
	}
	return results, nil
}

// GetOutstandingDebt total por cobrar (deudas activas).
func (r *AnalyticsRepo) GetOutstandingDebt(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(remaining_amount), 0) FROM debts WHERE is_active`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("analytics.GetOutstandingDebt: %w", err)
	}
	return total, nil
}
