package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, invoice_number, customer_id, subtotal, total_price, total_paid, total_return, total_balance_used, old_debt_paid, status, notes, user_id, created_at, updated_at, cancelled_at`

// SaleRepo ventas (cabecera + líneas) sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var customerID, userID *string
	err := row.Scan(&s.ID, &s.InvoiceNumber, &customerID, &s.Subtotal, &s.TotalPrice, &s.TotalPaid,
		&s.TotalReturn, &s.TotalBalanceUsed, &s.OldDebtPaid, &s.Status, &s.Notes, &userID,
		&s.CreatedAt, &s.UpdatedAt, &s.CancelledAt)
	if err != nil {
		return nil, err
	}
	s.CustomerID = stringOrEmpty(customerID)
	s.UserID = stringOrEmpty(userID)
	return &s, nil
}

// Create persiste la venta y sus líneas.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.InvoiceNumber, nullString(sale.CustomerID), sale.Subtotal, sale.TotalPrice,
		sale.TotalPaid, sale.TotalReturn, sale.TotalBalanceUsed, sale.OldDebtPaid, sale.Status,
		sale.Notes, nullString(sale.UserID), sale.CreatedAt, sale.UpdatedAt, sale.CancelledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if violatedConstraint(err) == "sales_invoice_number_key" {
				return domain.ErrNumberTaken
			}
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	itemQuery := `
		INSERT INTO sale_items (id, sale_id, product_id, variant_id, variant_name, qty, price_at_sale, unit_factor_at_sale, cost_at_sale, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, it := range sale.Items {
		_, err := r.q.Exec(ctx, itemQuery,
			it.ID, sale.ID, it.ProductID, it.VariantID, it.VariantName, it.Qty,
			it.PriceAtSale, it.UnitFactorAtSale, it.CostAtSale, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

func (r *SaleRepo) getOne(ctx context.Context, query, arg, op string) (*entity.Sale, error) {
	sale, err := scanSale(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sale.Items, err = r.items(ctx, sale.ID); err != nil {
		return nil, err
	}
	return sale, nil
}

// GetByID obtiene la venta con sus líneas.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id, "get sale")
}

// GetByInvoiceNumber búsqueda por número de factura.
func (r *SaleRepo) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE invoice_number = $1`, invoiceNumber, "get sale by invoice")
}

// GetForUpdate bloquea la cabecera de la venta.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id, "lock sale")
}

func (r *SaleRepo) items(ctx context.Context, saleID string) ([]entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, variant_id, variant_name, qty, price_at_sale, unit_factor_at_sale, cost_at_sale, subtotal
		FROM sale_items WHERE sale_id = $1 ORDER BY line_no`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var items []entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.VariantID, &it.VariantName, &it.Qty,
			&it.PriceAtSale, &it.UnitFactorAtSale, &it.CostAtSale, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateStatus cambia el estado; cancelledAt solo se escribe si no es nil.
func (r *SaleRepo) UpdateStatus(ctx context.Context, id, status string, cancelledAt *time.Time) error {
	query := `
		UPDATE sales SET status = $2, cancelled_at = COALESCE($3, cancelled_at), updated_at = NOW()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, status, cancelledAt)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List ventas más recientes primero, con líneas.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1 = 1`
	var args []any
	pos := 1
	if f.CustomerID != "" {
		query += fmt.Sprintf(" AND customer_id = $%d", pos)
		args = append(args, f.CustomerID)
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limitArg(f.Limit), f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	var list []*entity.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, sale)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	// Las líneas se leen después de cerrar rows: una tx no admite dos consultas abiertas.
	for _, sale := range list {
		if sale.Items, err = r.items(ctx, sale.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}
