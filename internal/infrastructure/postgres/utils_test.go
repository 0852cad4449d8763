package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// execErr Querier que falla en Exec con el error dado.
type execErr struct {
	Querier
	err error
}

func (q execErr) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, q.err
}

func TestCreate_NumeroRepetidoEsErrNumberTaken(t *testing.T) {
	ctx := context.Background()
	taken := func(constraint string) error {
		return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
	}

	err := NewSaleRepository(execErr{err: taken("sales_invoice_number_key")}).Create(ctx, &entity.Sale{ID: "s1"})
	assert.ErrorIs(t, err, domain.ErrNumberTaken)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	err = NewSaleRepository(execErr{err: taken("sales_pkey")}).Create(ctx, &entity.Sale{ID: "s1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.NotErrorIs(t, err, domain.ErrNumberTaken)

	err = NewReturnRepository(execErr{err: taken("customer_returns_return_number_key")}).Create(ctx, &entity.CustomerReturn{ID: "r1"})
	assert.ErrorIs(t, err, domain.ErrNumberTaken)

	err = NewPurchaseRepository(execErr{err: taken("purchases_reference_key")}).Create(ctx, &entity.Purchase{ID: "c1"})
	assert.ErrorIs(t, err, domain.ErrNumberTaken)
}
