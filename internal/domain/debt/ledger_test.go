package debt_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/debt"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

func TestApplyPayment_ParcialYLuegoPagada(t *testing.T) {
	now := time.Now()
	d := debt.New("d1", "s1", "c1", decimal.NewFromInt(50000), now)
	assert.Equal(t, entity.DebtStatusUnpaid, d.Status)

	require.NoError(t, debt.ApplyPayment(d, decimal.NewFromInt(20000), now))
	assert.True(t, d.RemainingAmount.Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, entity.DebtStatusPartial, d.Status)
	assert.True(t, d.IsActive)

	require.NoError(t, debt.ApplyPayment(d, decimal.NewFromInt(30000), now))
	assert.True(t, d.RemainingAmount.IsZero())
	assert.Equal(t, entity.DebtStatusPaid, d.Status)
	assert.False(t, d.IsActive)
	assert.NotNil(t, d.PaidAt)
}

func TestApplyPayment_MayorAlSaldo(t *testing.T) {
	d := debt.New("d1", "s1", "c1", decimal.NewFromInt(1000), time.Now())
	err := debt.ApplyPayment(d, decimal.NewFromInt(1001), time.Now())

	var pe *domain.PaymentExceedsDebtError
	require.True(t, errors.As(err, &pe))
	assert.True(t, errors.Is(err, domain.ErrPaymentExceedsDebt))
	assert.True(t, d.RemainingAmount.Equal(decimal.NewFromInt(1000)), "el saldo no cambia")
}

func TestApplyPayment_MontoNoPositivo(t *testing.T) {
	d := debt.New("d1", "s1", "c1", decimal.NewFromInt(1000), time.Now())
	assert.ErrorIs(t, debt.ApplyPayment(d, decimal.Zero, time.Now()), domain.ErrInvalidInput)
	assert.ErrorIs(t, debt.ApplyPayment(d, decimal.NewFromInt(-5), time.Now()), domain.ErrInvalidInput)
}

func TestRevertPayment_ReactivaDeuda(t *testing.T) {
	now := time.Now()
	d := debt.New("d1", "s1", "c1", decimal.NewFromInt(100), now)
	require.NoError(t, debt.ApplyPayment(d, decimal.NewFromInt(100), now))
	require.False(t, d.IsActive)

	debt.RevertPayment(d, decimal.NewFromInt(40), now)
	assert.Equal(t, entity.DebtStatusPartial, d.Status)
	assert.True(t, d.IsActive)
	assert.Nil(t, d.PaidAt)
	assert.True(t, d.RemainingAmount.Equal(decimal.NewFromInt(40)))
}

func TestOutstanding(t *testing.T) {
	d := debt.New("d1", "s1", "c1", decimal.NewFromInt(100), time.Now())
	assert.True(t, debt.Outstanding(d))
	debt.Cancel(d, time.Now())
	assert.False(t, debt.Outstanding(d))
	assert.False(t, debt.Outstanding(nil))
}
