package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.StockMutationRepository = (*StockMutationRepo)(nil)

// StockMutationRepo kardex append-only. No hay UPDATE ni DELETE sobre stock_mutations.
type StockMutationRepo struct {
	q Querier
}

// NewStockMutationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMutationRepository(q Querier) *StockMutationRepo {
	return &StockMutationRepo{q: q}
}

// Create persiste un movimiento.
func (r *StockMutationRepo) Create(ctx context.Context, m *entity.StockMutation) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_mutations (id, product_id, variant_id, type, qty_base_unit, stock_before, stock_after, unit_cost, reference, notes, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ProductID, nullString(m.VariantID), string(m.Type), m.QtyBaseUnit,
		m.StockBefore, m.StockAfter, m.UnitCost, m.Reference, m.Notes, nullString(m.UserID), m.CreatedAt,
	).Scan(&m.Seq)
	if err != nil {
		return fmt.Errorf("create stock mutation: %w", err)
	}
	return nil
}

// List movimientos filtrados en orden de inserción.
func (r *StockMutationRepo) List(ctx context.Context, f repository.MutationFilter) ([]*entity.StockMutation, error) {
	query, args := mutationListQuery(f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock mutations: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMutation
	for rows.Next() {
		var m entity.StockMutation
		var variantID, userID *string
		var typ string
		if err := rows.Scan(&m.ID, &m.ProductID, &variantID, &typ, &m.QtyBaseUnit, &m.StockBefore,
			&m.StockAfter, &m.UnitCost, &m.Reference, &m.Notes, &userID, &m.Seq, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock mutation: %w", err)
		}
		m.Type = entity.MutationType(typ)
		m.VariantID = stringOrEmpty(variantID)
		m.UserID = stringOrEmpty(userID)
		list = append(list, &m)
	}
	return list, rows.Err()
}

// mutationListQuery ordena por seq: created_at se fija en Go antes del lock y se repite
// dentro de una misma transacción.
func mutationListQuery(f repository.MutationFilter) (string, []any) {
	query := `
		SELECT id, product_id, variant_id, type, qty_base_unit, stock_before, stock_after, unit_cost, reference, notes, user_id, seq, created_at
		FROM stock_mutations WHERE product_id = $1`
	args := []any{f.ProductID}
	pos := 2
	if f.VariantID != "" {
		query += fmt.Sprintf(" AND variant_id = $%d", pos)
		args = append(args, f.VariantID)
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
	query += fmt.Sprintf(" ORDER BY seq LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limitArg(f.Limit), f.Offset)
	return query, args
}
