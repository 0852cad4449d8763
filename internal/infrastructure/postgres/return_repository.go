package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

const returnColumns = `id, return_number, sale_id, customer_id, total_value_returned, total_value_exchange, total_refund, credit_added, compensation_type, surplus_disposition, status, reason, user_id, created_at, cancelled_at, cancelled_by`

// ReturnRepo devoluciones con líneas devueltas y de cambio.
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

func scanReturn(row pgx.Row) (*entity.CustomerReturn, error) {
	var ret entity.CustomerReturn
	var customerID, userID, cancelledBy *string
	err := row.Scan(&ret.ID, &ret.ReturnNumber, &ret.SaleID, &customerID, &ret.TotalValueReturned,
		&ret.TotalValueExchange, &ret.TotalRefund, &ret.CreditAdded, &ret.CompensationType,
		&ret.SurplusDisposition, &ret.Status, &ret.Reason, &userID, &ret.CreatedAt,
		&ret.CancelledAt, &cancelledBy)
	if err != nil {
		return nil, err
	}
	ret.CustomerID = stringOrEmpty(customerID)
	ret.UserID = stringOrEmpty(userID)
	ret.CancelledBy = stringOrEmpty(cancelledBy)
	return &ret, nil
}

// Create persiste la devolución con todas sus líneas.
func (r *ReturnRepo) Create(ctx context.Context, ret *entity.CustomerReturn) error {
	query := `
		INSERT INTO customer_returns (` + returnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		ret.ID, ret.ReturnNumber, ret.SaleID, nullString(ret.CustomerID), ret.TotalValueReturned,
		ret.TotalValueExchange, ret.TotalRefund, ret.CreditAdded, ret.CompensationType,
		ret.SurplusDisposition, ret.Status, ret.Reason, nullString(ret.UserID), ret.CreatedAt,
		ret.CancelledAt, nullString(ret.CancelledBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			if violatedConstraint(err) == "customer_returns_return_number_key" {
				return domain.ErrNumberTaken
			}
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert return: %w", err)
	}
	itemQuery := `
		INSERT INTO customer_return_items (id, return_id, sale_item_id, product_id, variant_id, qty, price_at_return, unit_factor_at_return, returned_to_stock, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, it := range ret.Items {
		_, err := r.q.Exec(ctx, itemQuery,
			it.ID, ret.ID, it.SaleItemID, it.ProductID, it.VariantID, it.Qty,
			it.PriceAtReturn, it.UnitFactorAtReturn, it.ReturnedToStock, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert return item: %w", err)
		}
	}
	exchangeQuery := `
		INSERT INTO customer_exchange_items (id, return_id, product_id, variant_id, qty, price_at_exchange, unit_factor_at_exchange, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, it := range ret.ExchangeItems {
		_, err := r.q.Exec(ctx, exchangeQuery,
			it.ID, ret.ID, it.ProductID, it.VariantID, it.Qty, it.PriceAtExchange, it.UnitFactorAtExchange, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert exchange item: %w", err)
		}
	}
	return nil
}

func (r *ReturnRepo) one(ctx context.Context, query, id, op string) (*entity.CustomerReturn, error) {
	ret, err := scanReturn(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.loadLines(ctx, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (r *ReturnRepo) GetByID(ctx context.Context, id string) (*entity.CustomerReturn, error) {
	return r.one(ctx, `SELECT `+returnColumns+` FROM customer_returns WHERE id = $1`, id, "get return")
}

func (r *ReturnRepo) GetForUpdate(ctx context.Context, id string) (*entity.CustomerReturn, error) {
	return r.one(ctx, `SELECT `+returnColumns+` FROM customer_returns WHERE id = $1 FOR UPDATE`, id, "lock return")
}

func (r *ReturnRepo) loadLines(ctx context.Context, ret *entity.CustomerReturn) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, return_id, sale_item_id, product_id, variant_id, qty, price_at_return, unit_factor_at_return, returned_to_stock, subtotal
		FROM customer_return_items WHERE return_id = $1 ORDER BY line_no`, ret.ID)
	if err != nil {
		return fmt.Errorf("list return items: %w", err)
	}
	for rows.Next() {
		var it entity.CustomerReturnItem
		if err := rows.Scan(&it.ID, &it.ReturnID, &it.SaleItemID, &it.ProductID, &it.VariantID, &it.Qty,
			&it.PriceAtReturn, &it.UnitFactorAtReturn, &it.ReturnedToStock, &it.Subtotal); err != nil {
			rows.Close()
			return fmt.Errorf("scan return item: %w", err)
		}
		ret.Items = append(ret.Items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list return items: %w", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT id, return_id, product_id, variant_id, qty, price_at_exchange, unit_factor_at_exchange, subtotal
		FROM customer_exchange_items WHERE return_id = $1 ORDER BY line_no`, ret.ID)
	if err != nil {
		return fmt.Errorf("list exchange items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.CustomerExchangeItem
		if err := rows.Scan(&it.ID, &it.ReturnID, &it.ProductID, &it.VariantID, &it.Qty,
			&it.PriceAtExchange, &it.UnitFactorAtExchange, &it.Subtotal); err != nil {
			return fmt.Errorf("scan exchange item: %w", err)
		}
		ret.ExchangeItems = append(ret.ExchangeItems, it)
	}
	return rows.Err()
}

// ListBySale devoluciones de una venta en orden cronológico.
func (r *ReturnRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.CustomerReturn, error) {
	rows, err := r.q.Query(ctx, `SELECT `+returnColumns+` FROM customer_returns WHERE sale_id = $1 ORDER BY created_at, id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	var list []*entity.CustomerReturn
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan return: %w", err)
		}
		list = append(list, ret)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	for _, ret := range list {
		if err := r.loadLines(ctx, ret); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *ReturnRepo) ReturnedQtyBySaleItem(ctx context.Context, saleID string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT ri.sale_item_id, SUM(ri.qty)
		FROM customer_return_items ri
		JOIN customer_returns cr ON cr.id = ri.return_id
		WHERE cr.sale_id = $1 AND cr.status <> 'cancelled'
		GROUP BY ri.sale_item_id`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("returned qty by sale item: %w", err)
	}
	defer rows.Close()
	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var id string
		var qty decimal.Decimal
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scan returned qty: %w", err)
		}
		out[id] = qty
	}
	return out, rows.Err()
}

func (r *ReturnRepo) CountActiveBySale(ctx context.Context, saleID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM customer_returns WHERE sale_id = $1 AND status <> 'cancelled'`, saleID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active returns: %w", err)
	}
	return n, nil
}

func (r *ReturnRepo) MarkCancelled(ctx context.Context, id, userID string, at time.Time) error {
	query := `
		UPDATE customer_returns SET status = 'cancelled', cancelled_at = $2, cancelled_by = $3
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, at, nullString(userID))
	if err != nil {
		return fmt.Errorf("cancel return: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
