package sales_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/application/ports/portstest"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/sequence"
	"github.com/jhoicas/pos-api/pkg/logger"
)

type countingMetrics struct {
	ports.NopMetrics
	mu        sync.Mutex
	mutations int
	committed int
}

func (m *countingMetrics) StockMutation(string) {
	m.mu.Lock()
	m.mutations++
	m.mu.Unlock()
}

func (m *countingMetrics) SaleCommitted(decimal.Decimal) {
	m.mu.Lock()
	m.committed++
	m.mu.Unlock()
}

// wrapped: mismo store del fixture, con un runner que registra bloqueos y falla a pedido.
func (f *fixture) wrapped() (*sales.UseCase, *portstest.TxRunner, *countingMetrics) {
	tr := portstest.Wrap(f.store)
	m := &countingMetrics{}
	uc := sales.NewUseCase(tr, appinventory.NewStockLedger(m), sequence.NewLocalGenerator(), ports.PrefixInvoice, f.repos.Sales, m, logger.Nop())
	return uc, tr, m
}

func TestCreateSale_FallaDeEscrituraNoDejaRastro(t *testing.T) {
	ctx := context.Background()
	for _, op := range []string{
		portstest.FailSaleCreate,
		portstest.FailMutationCreate,
		portstest.FailCreditBalance,
		portstest.FailDebtCreate,
	} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t, "40")
			uc, tr, m := f.wrapped()
			tr.FailOn(op)

			_, err := uc.CreateSale(ctx, cajero, sales.CreateSaleInput{
				CustomerID:       cliente,
				Items:            []sales.LineInput{line(unidad, "2")},
				TotalBalanceUsed: d("1000"),
				TotalPaid:        d("1500"),
				IsDebt:           true,
			})
			require.ErrorIs(t, err, portstest.ErrInjected)

			assert.True(t, f.stock(t).Equal(d("40")))
			assert.True(t, f.customer(t).CreditBalance.Equal(d("10000")))
			list, err := f.uc.ListSales(ctx, repository.SaleFilter{})
			require.NoError(t, err)
			assert.Empty(t, list)
			muts, err := f.repos.Mutations.List(ctx, repository.MutationFilter{ProductID: productID})
			require.NoError(t, err)
			assert.Empty(t, muts)
			debts, err := f.repos.Debts.ListByCustomer(ctx, cliente, false)
			require.NoError(t, err)
			assert.Empty(t, debts)
			assert.Zero(t, m.mutations)
			assert.Zero(t, m.committed)
		})
	}
}

func TestCreateSale_FallaEnAbonoRevierteDeudaAnterior(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "40")
	old, err := f.uc.CreateSale(ctx, cajero, sales.CreateSaleInput{
		CustomerID: cliente,
		Items:      []sales.LineInput{line(unidad, "1")},
		IsDebt:     true,
	})
	require.NoError(t, err)

	uc, tr, m := f.wrapped()
	tr.FailOn(portstest.FailDebtPayment)
	_, err = uc.CreateSale(ctx, cajero, sales.CreateSaleInput{
		CustomerID:       cliente,
		Items:            []sales.LineInput{line(unidad, "1")},
		TotalPaid:        d("3000"),
		ShouldPayOldDebt: true,
	})
	require.ErrorIs(t, err, portstest.ErrInjected)

	assert.True(t, f.stock(t).Equal(d("39")))
	list, _ := f.uc.ListSales(ctx, repository.SaleFilter{})
	assert.Len(t, list, 1)
	muts, _ := f.repos.Mutations.List(ctx, repository.MutationFilter{ProductID: productID})
	assert.Len(t, muts, 1)

	debt, err := f.repos.Debts.GetByID(ctx, old.Debt.ID)
	require.NoError(t, err)
	assert.True(t, debt.RemainingAmount.Equal(d("1500")))
	assert.True(t, debt.IsActive)
	payments, _ := f.repos.Debts.ListPayments(ctx, old.Debt.ID)
	assert.Empty(t, payments)
	s, _ := f.uc.GetSale(ctx, old.Sale.ID)
	assert.Equal(t, old.Sale.Status, s.Status)
	assert.Zero(t, m.mutations)
}

func TestCreateSale_MetricasSoloTrasConfirmar(t *testing.T) {
	f := newFixture(t, "40")
	uc, _, m := f.wrapped()

	_, err := uc.CreateSale(context.Background(), cajero, sales.CreateSaleInput{
		Items:     []sales.LineInput{line(unidad, "1"), line(caja12, "1")},
		TotalPaid: d("16500"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, m.mutations)
	assert.Equal(t, 1, m.committed)
}

func TestOrdenDeBloqueos_VentaYAnulacion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "40")
	uc, tr, _ := f.wrapped()

	fiada, err := uc.CreateSale(ctx, cajero, sales.CreateSaleInput{
		CustomerID: cliente,
		Items:      []sales.LineInput{line(unidad, "1")},
		IsDebt:     true,
	})
	require.NoError(t, err)
	assert.True(t, portstest.InOrder(tr.Locks()), "%v", tr.Locks())

	tr.Reset()
	abono, err := uc.CreateSale(ctx, cajero, sales.CreateSaleInput{
		CustomerID:       cliente,
		Items:            []sales.LineInput{line(unidad, "1")},
		TotalPaid:        d("2000"),
		ShouldPayOldDebt: true,
		IsDebt:           true,
	})
	require.NoError(t, err)
	locks := tr.Locks()
	assert.True(t, portstest.InOrder(locks), "%v", locks)
	require.NotEmpty(t, locks)
	assert.Equal(t, portstest.LockCustomer, locks[0].Kind)
	assert.Contains(t, locks, portstest.Lock{Kind: portstest.LockDocument, ID: "sale:" + fiada.Sale.ID})

	tr.Reset()
	_, err = uc.CancelSale(ctx, cajero, abono.Sale.ID, "")
	require.NoError(t, err)
	locks = tr.Locks()
	assert.True(t, portstest.InOrder(locks), "%v", locks)
	assert.Equal(t, portstest.LockCustomer, locks[0].Kind)
}

// resetCounter simula un contador reiniciado: siempre el mismo número.
type resetCounter struct{ fallback ports.NumberGenerator }

func (resetCounter) Next(context.Context, string) (string, error) { return "INV-20260219-0001", nil }

func (g resetCounter) Fallback() ports.NumberGenerator { return g.fallback }

func TestCreateSale_NumeroRepetidoReintentaConFallback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "40")
	fallback := sequence.NewTimestampGenerator()
	uc := sales.NewUseCase(f.store, appinventory.NewStockLedger(nil), resetCounter{fallback: fallback}, ports.PrefixInvoice, f.repos.Sales, nil, logger.Nop())

	in := sales.CreateSaleInput{Items: []sales.LineInput{line(unidad, "1")}, TotalPaid: d("1500")}
	first, err := uc.CreateSale(ctx, cajero, in)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260219-0001", first.Sale.InvoiceNumber)

	second, err := uc.CreateSale(ctx, cajero, in)
	require.NoError(t, err)
	assert.NotEqual(t, first.Sale.InvoiceNumber, second.Sale.InvoiceNumber)
	assert.True(t, strings.HasPrefix(second.Sale.InvoiceNumber, "INV-"), second.Sale.InvoiceNumber)
	assert.True(t, f.stock(t).Equal(d("38")))

	muts, _ := f.repos.Mutations.List(ctx, repository.MutationFilter{ProductID: productID})
	require.Len(t, muts, 2)
	assert.Equal(t, second.Sale.InvoiceNumber, muts[1].Reference)

	// sin fallback el choque se reporta como duplicado
	plain := sales.NewUseCase(f.store, appinventory.NewStockLedger(nil), fixedNumber("INV-20260219-0001"), ports.PrefixInvoice, f.repos.Sales, nil, logger.Nop())
	_, err = plain.CreateSale(ctx, cajero, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.True(t, f.stock(t).Equal(d("38")))
}

type fixedNumber string

func (n fixedNumber) Next(context.Context, string) (string, error) { return string(n), nil }
