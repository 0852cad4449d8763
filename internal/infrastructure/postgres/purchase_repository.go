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

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

const purchaseColumns = `id, reference, supplier_name, total, status, notes, user_id, created_at, cancelled_at`

// PurchaseRepo compras a proveedor sobre PostgreSQL.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	var userID *string
	if err := row.Scan(&p.ID, &p.Reference, &p.SupplierName, &p.Total, &p.Status, &p.Notes,
		&userID, &p.CreatedAt, &p.CancelledAt); err != nil {
		return nil, err
	}
	p.UserID = stringOrEmpty(userID)
	return &p, nil
}

func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	query := `
		INSERT INTO purchases (` + purchaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Reference, p.SupplierName, p.Total, p.Status, p.Notes, nullString(p.UserID), p.CreatedAt, p.CancelledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if violatedConstraint(err) == "purchases_reference_key" {
				return domain.ErrNumberTaken
			}
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	itemQuery := `
		INSERT INTO purchase_items (id, purchase_id, product_id, variant_id, qty, unit_cost, unit_factor, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, it := range p.Items {
		if _, err := r.q.Exec(ctx, itemQuery,
			it.ID, p.ID, it.ProductID, nullString(it.VariantID), it.Qty, it.UnitCost, it.UnitFactor, it.Subtotal,
		); err != nil {
			return fmt.Errorf("insert purchase item: %w", err)
		}
	}
	return nil
}

func (r *PurchaseRepo) one(ctx context.Context, query, id, op string) (*entity.Purchase, error) {
	p, err := scanPurchase(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p.Items, err = r.items(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.one(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id, "get purchase")
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.one(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1 FOR UPDATE`, id, "lock purchase")
}

func (r *PurchaseRepo) items(ctx context.Context, purchaseID string) ([]entity.PurchaseItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_id, product_id, variant_id, qty, unit_cost, unit_factor, subtotal
		FROM purchase_items WHERE purchase_id = $1 ORDER BY line_no`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase items: %w", err)
	}
	defer rows.Close()
	var items []entity.PurchaseItem
	for rows.Next() {
		var it entity.PurchaseItem
		var variantID *string
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.ProductID, &variantID, &it.Qty,
			&it.UnitCost, &it.UnitFactor, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		it.VariantID = stringOrEmpty(variantID)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PurchaseRepo) MarkCancelled(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE purchases SET status = 'cancelled', cancelled_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("cancel purchase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List compras más recientes primero (sin líneas).
func (r *PurchaseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Purchase, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+purchaseColumns+` FROM purchases ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	var list []*entity.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
