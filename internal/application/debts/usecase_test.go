package debts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/debts"
	"github.com/jhoicas/pos-api/internal/application/ports/portstest"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seed(t *testing.T) (*debts.UseCase, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	now := time.Now()

	require.NoError(t, repos.Customers.Create(ctx, &entity.Customer{ID: "c1", Name: "Luis", CreatedAt: now}))
	require.NoError(t, repos.Sales.Create(ctx, &entity.Sale{
		ID: "s1", InvoiceNumber: "INV-1", CustomerID: "c1", Subtotal: d("50000"), TotalPrice: d("50000"),
		Status: entity.SaleStatusDebt, CreatedAt: now,
	}))
	require.NoError(t, repos.Debts.Create(ctx, &entity.Debt{
		ID: "d1", SaleID: "s1", CustomerID: "c1", OriginalAmount: d("50000"), RemainingAmount: d("50000"),
		Status: entity.DebtStatusUnpaid, IsActive: true, CreatedAt: now,
	}))
	return debts.NewUseCase(store, repos, nil, logger.Nop()), store
}

func TestApplyPayment_AbonosParcialYTotal(t *testing.T) {
	uc, store := seed(t)
	ctx := context.Background()

	res, err := uc.ApplyPayment(ctx, "u1", "d1", d("20000"))
	require.NoError(t, err)
	assert.True(t, res.Debt.RemainingAmount.Equal(d("30000")))
	assert.Equal(t, entity.DebtStatusPartial, res.Debt.Status)

	sum, err := uc.CustomerDebtSummary(ctx, "c1", true)
	require.NoError(t, err)
	assert.True(t, sum.TotalDebt.Equal(d("30000")))

	res, err = uc.ApplyPayment(ctx, "u1", "d1", d("30000"))
	require.NoError(t, err)
	assert.True(t, res.Debt.RemainingAmount.IsZero())
	assert.Equal(t, entity.DebtStatusPaid, res.Debt.Status)
	assert.False(t, res.Debt.IsActive)
	assert.NotNil(t, res.Debt.PaidAt)

	sale, _ := store.Repos().Sales.GetByID(ctx, "s1")
	assert.Equal(t, entity.SaleStatusCompleted, sale.Status)

	payments, err := uc.ListPayments(ctx, "d1")
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	sum, _ = uc.CustomerDebtSummary(ctx, "c1", false)
	assert.True(t, sum.TotalDebt.IsZero())
	assert.Len(t, sum.Debts, 1)
}

func TestApplyPayment_Rechazos(t *testing.T) {
	uc, _ := seed(t)
	ctx := context.Background()

	_, err := uc.ApplyPayment(ctx, "u1", "d1", d("60000"))
	var exceeds *domain.PaymentExceedsDebtError
	require.True(t, errors.As(err, &exceeds))
	assert.True(t, exceeds.Remaining.Equal(d("50000")))

	_, err = uc.ApplyPayment(ctx, "u1", "d1", d("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.ApplyPayment(ctx, "u1", "nope", d("10"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, _ := uc.GetDebt(ctx, "d1")
	assert.True(t, got.RemainingAmount.Equal(d("50000")))
	payments, _ := uc.ListPayments(ctx, "d1")
	assert.Empty(t, payments)
}

func TestMarkPaid(t *testing.T) {
	uc, _ := seed(t)
	ctx := context.Background()

	_, err := uc.ApplyPayment(ctx, "u1", "d1", d("12500"))
	require.NoError(t, err)

	res, err := uc.MarkPaid(ctx, "u1", "d1")
	require.NoError(t, err)
	assert.True(t, res.Payment.Amount.Equal(d("37500")))
	assert.Equal(t, entity.DebtStatusPaid, res.Debt.Status)

	_, err = uc.MarkPaid(ctx, "u1", "d1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyPayment_BloqueaVentaAntesQueDeudaYRevierteSiFalla(t *testing.T) {
	_, store := seed(t)
	ctx := context.Background()
	tr := portstest.Wrap(store)
	uc := debts.NewUseCase(tr, store.Repos(), nil, logger.Nop())

	tr.FailOn(portstest.FailDebtPayment)
	_, err := uc.ApplyPayment(ctx, "u1", "d1", d("50000"))
	require.ErrorIs(t, err, portstest.ErrInjected)
	assert.Equal(t, []portstest.Lock{
		{Kind: portstest.LockDocument, ID: "sale:s1"},
		{Kind: portstest.LockDebt, ID: "d1"},
	}, tr.Locks())

	got, err := uc.GetDebt(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, got.RemainingAmount.Equal(d("50000")))
	assert.True(t, got.IsActive)
	payments, _ := uc.ListPayments(ctx, "d1")
	assert.Empty(t, payments)
	s, _ := store.Repos().Sales.GetByID(ctx, "s1")
	assert.Equal(t, entity.SaleStatusDebt, s.Status)

	tr.Reset()
	res, err := uc.ApplyPayment(ctx, "u1", "d1", d("50000"))
	require.NoError(t, err)
	assert.Equal(t, entity.DebtStatusPaid, res.Debt.Status)
	assert.True(t, portstest.InOrder(tr.Locks()))
}
