package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.DebtRepository = (*DebtRepo)(nil)

const debtColumns = `id, sale_id, customer_id, original_amount, remaining_amount, status, is_active, created_at, updated_at, paid_at`

// DebtRepo deudas y abonos sobre PostgreSQL.
type DebtRepo struct {
	q Querier
}

// NewDebtRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDebtRepository(q Querier) *DebtRepo {
	return &DebtRepo{q: q}
}

func scanDebt(row pgx.Row) (*entity.Debt, error) {
	var d entity.Debt
	err := row.Scan(&d.ID, &d.SaleID, &d.CustomerID, &d.OriginalAmount, &d.RemainingAmount,
		&d.Status, &d.IsActive, &d.CreatedAt, &d.UpdatedAt, &d.PaidAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DebtRepo) Create(ctx context.Context, d *entity.Debt) error {
	query := `
		INSERT INTO debts (` + debtColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.SaleID, d.CustomerID, d.OriginalAmount, d.RemainingAmount,
		d.Status, d.IsActive, d.CreatedAt, d.UpdatedAt, d.PaidAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert debt: %w", err)
	}
	return nil
}

func (r *DebtRepo) one(ctx context.Context, query, arg, op string) (*entity.Debt, error) {
	d, err := scanDebt(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

func (r *DebtRepo) GetByID(ctx context.Context, id string) (*entity.Debt, error) {
	return r.one(ctx, `SELECT `+debtColumns+` FROM debts WHERE id = $1`, id, "get debt")
}

func (r *DebtRepo) GetForUpdate(ctx context.Context, id string) (*entity.Debt, error) {
	return r.one(ctx, `SELECT `+debtColumns+` FROM debts WHERE id = $1 FOR UPDATE`, id, "lock debt")
}

func (r *DebtRepo) GetBySaleID(ctx context.Context, saleID string) (*entity.Debt, error) {
	return r.one(ctx, `SELECT `+debtColumns+` FROM debts WHERE sale_id = $1`, saleID, "get debt by sale")
}

// ListActiveByCustomerForUpdate bloquea en orden de creación para que dos ventas del mismo cliente no se crucen.
func (r *DebtRepo) ListActiveByCustomerForUpdate(ctx context.Context, customerID string) ([]*entity.Debt, error) {
	query := `
		SELECT ` + debtColumns + ` FROM debts
		WHERE customer_id = $1 AND is_active
		ORDER BY created_at, id
		FOR UPDATE`
	return r.list(ctx, "lock active debts", query, customerID)
}

func (r *DebtRepo) ListByCustomer(ctx context.Context, customerID string, onlyActive bool) ([]*entity.Debt, error) {
	query := `
		SELECT ` + debtColumns + ` FROM debts
		WHERE customer_id = $1 AND (NOT $2 OR is_active)
		ORDER BY created_at, id`
	return r.list(ctx, "list debts", query, customerID, onlyActive)
}

func (r *DebtRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Debt, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// Update guarda saldo, estado y fecha de pago.
func (r *DebtRepo) Update(ctx context.Context, d *entity.Debt) error {
	query := `
		UPDATE debts SET remaining_amount = $2, status = $3, is_active = $4, updated_at = $5, paid_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, d.ID, d.RemainingAmount, d.Status, d.IsActive, d.UpdatedAt, d.PaidAt)
	if err != nil {
		return fmt.Errorf("update debt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DebtRepo) CreatePayment(ctx context.Context, p *entity.DebtPayment) error {
	query := `
		INSERT INTO debt_payments (id, debt_id, sale_id, amount, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, p.ID, p.DebtID, nullString(p.SaleID), p.Amount, nullString(p.UserID), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert debt payment: %w", err)
	}
	return nil
}

// ListPaymentsBySale abonos hechos desde una venta (pago de deudas anteriores).
func (r *DebtRepo) ListPaymentsBySale(ctx context.Context, saleID string) ([]*entity.DebtPayment, error) {
	return r.payments(ctx, `
		SELECT id, debt_id, sale_id, amount, user_id, created_at
		FROM debt_payments WHERE sale_id = $1 ORDER BY created_at, id`, saleID)
}

func (r *DebtRepo) ListPayments(ctx context.Context, debtID string) ([]*entity.DebtPayment, error) {
	return r.payments(ctx, `
		SELECT id, debt_id, sale_id, amount, user_id, created_at
		FROM debt_payments WHERE debt_id = $1 ORDER BY created_at, id`, debtID)
}

func (r *DebtRepo) payments(ctx context.Context, query, arg string) ([]*entity.DebtPayment, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list debt payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.DebtPayment
	for rows.Next() {
		var p entity.DebtPayment
		var saleID, userID *string
		if err := rows.Scan(&p.ID, &p.DebtID, &saleID, &p.Amount, &userID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan debt payment: %w", err)
		}
		p.SaleID = stringOrEmpty(saleID)
		p.UserID = stringOrEmpty(userID)
		list = append(list, &p)
	}
	return list, rows.Err()
}
