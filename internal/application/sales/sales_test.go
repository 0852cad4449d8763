package sales_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/infrastructure/sequence"
	"github.com/jhoicas/pos-api/pkg/logger"
)

const (
	productID = "p-arroz"
	caja12    = "v-caja12"
	unidad    = "v-unidad"
	cliente   = "c-ana"
	cajero    = "u-cajero"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store *memory.Store
	repos repository.Repos
	uc    *sales.UseCase
}

// newFixture: producto con stock dado (unidad base), costo promedio 1000,
// caja x12 a 15000 y unidad a 1500; cliente con saldo a favor 10000.
func newFixture(t *testing.T, stock string) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	now := time.Now()

	require.NoError(t, repos.Products.Create(ctx, &entity.Product{
		ID: productID, SKU: "ARZ-001", Name: "Arroz", BaseUnit: "unidad",
		Stock: d(stock), MinStock: d("5"), AverageCost: d("1000"), IsActive: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, repos.Variants.Create(ctx, &entity.ProductVariant{
		ID: caja12, ProductID: productID, Name: "Caja x12", Unit: "caja",
		ConversionToBase: d("12"), SellPrice: d("15000"), IsActive: true,
	}))
	require.NoError(t, repos.Variants.Create(ctx, &entity.ProductVariant{
		ID: unidad, ProductID: productID, Name: "Unidad", Unit: "unidad",
		ConversionToBase: d("1"), SellPrice: d("1500"), IsActive: true,
	}))
	require.NoError(t, repos.Customers.Create(ctx, &entity.Customer{
		ID: cliente, Name: "Ana", CreditBalance: d("10000"), CreatedAt: now, UpdatedAt: now,
	}))

	uc := sales.NewUseCase(store, appinventory.NewStockLedger(nil), sequence.NewLocalGenerator(), ports.PrefixInvoice, repos.Sales, ports.NopMetrics{}, logger.Nop())
	return &fixture{store: store, repos: repos, uc: uc}
}

func (f *fixture) stock(t *testing.T) decimal.Decimal {
	t.Helper()
	p, err := f.repos.Products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) customer(t *testing.T) *entity.Customer {
	t.Helper()
	c, err := f.repos.Customers.GetByID(context.Background(), cliente)
	require.NoError(t, err)
	return c
}

func line(variantID, qty string) sales.LineInput {
	return sales.LineInput{ProductID: productID, VariantID: variantID, Qty: d(qty)}
}

func TestCreateSale_DescuentaEnUnidadBase(t *testing.T) {
	f := newFixture(t, "40")

	res, err := f.uc.CreateSale(context.Background(), cajero, sales.CreateSaleInput{
		Items:     []sales.LineInput{line(caja12, "3")},
		TotalPaid: d("45000"),
	})
	require.NoError(t, err)

	assert.Equal(t, sales.StateCommitted, res.State)
	assert.True(t, f.stock(t).Equal(d("4")))
	assert.True(t, res.Sale.Subtotal.Equal(d("45000")))
	assert.True(t, res.Change.IsZero())
	assert.Equal(t, entity.SaleStatusCompleted, res.Sale.Status)
	assert.Nil(t, res.Debt)

	item := res.Sale.Items[0]
	assert.True(t, item.UnitFactorAtSale.Equal(d("12")))
	assert.True(t, item.CostAtSale.Equal(d("12000")))

	muts, err := f.repos.Mutations.List(context.Background(), repository.MutationFilter{ProductID: productID})
	require.NoError(t, err)
	require.Len(t, muts, 1)
	assert.Equal(t, entity.MutationSale, muts[0].Type)
	assert.True(t, muts[0].QtyBaseUnit.Equal(d("-36")))
	assert.True(t, muts[0].StockBefore.Equal(d("40")))
	assert.True(t, muts[0].StockAfter.Equal(d("4")))
	assert.Equal(t, res.Sale.InvoiceNumber, muts[0].Reference)
}

func TestCreateSale_StockInsuficienteReportaFaltante(t *testing.T) {
	f := newFixture(t, "30")

	_, err := f.uc.CreateSale(context.Background(), cajero, sales.CreateSaleInput{
		Items:     []sales.LineInput{line(caja12, "3")},
		TotalPaid: d("45000"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	require.Len(t, stockErr.Lines, 1)
	assert.True(t, stockErr.Lines[0].Shortfall.Equal(d("6")))
	assert.Equal(t, caja12, stockErr.Lines[0].VariantID)

	assert.True(t, f.stock(t).Equal(d("30")))
	list, _ := f.uc.ListSales(context.Background(), repository.SaleFilter{})
	assert.Empty(t, list)
}

func TestCreateSale_LineasDelMismoProductoSeAcumulan(t *testing.T) {
	f := newFixture(t, "40")

	_, err := f.uc.CreateSale(context.Background(), cajero, sales.CreateSaleInput{
		Items:     []sales.LineInput{line(caja12, "3"), line(unidad, "5")},
		TotalPaid: d("100000"),
	})
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	require.Len(t, stockErr.Lines, 1)
	assert.Equal(t, unidad, stockErr.Lines[0].VariantID)
	assert.True(t, stockErr.Lines[0].Shortfall.Equal(d("1")))
	assert.True(t, f.stock(t).Equal(d("40")))
}

func TestCreateSale_PagoInsuficiente(t *testing.T) {
	f := newFixture(t, "40")

	_, err := f.uc.CreateSale(context.Background(), cajero, sales.CreateSaleInput{
		Items:     []sales.LineInput{line(caja12, "3")},
		TotalPaid: d("40000"),
	})
	var payErr *domain.InsufficientPaymentError
	require.True(t, errors.As(err, &payErr))
	assert.True(t, payErr.Required.Equal(d("45000")))
	assert.True(t, f.stock(t).Equal(d("40")))
}

func TestCreateSale_Cambio(t *testing.T) {
	f := newFixture(t, "40")

	res, err := f.uc.CreateSale(context.Background(), cajero, sales.CreateSaleInput{
		Items:     []sales.LineInput{line(caja12, "3")},
		TotalPaid: d("50000"),
	})
	require.NoError(t, err)
	assert.True(t, res.Change.Equal(d("5000")))
	assert.True(t, res.Sale.TotalReturn.Equal(d("5000")))
}

func TestCreateSale_FiadoCreaDeuda(t *testing.T) {
	f := newFixture(t, "40")

	res, err := f.uc.CreateSale(context.Background(), cajero, sales.CreateSaleInput{
		CustomerID: cliente,
		Items:      []sales.LineInput{line(caja12, "3")},
		TotalPaid:  d("20000"),
		IsDebt:     true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Debt)
	assert.Equal(t, entity.SaleStatusDebt, res.Sale.Status)
	assert.True(t, res.Debt.OriginalAmount.Equal(d("25000")))
	assert.Equal(t, entity.DebtStatusUnpaid, res.Debt.Status)
	assert.True(t, res.Debt.IsActive)
}

func TestCreateSale_ValidacionCliente(t *testing.T) {
	f := newFixture(t, "40")

	_, err := f.uc.CreateSale(context.Background(), cajero, sales.CreateSaleInput{
		Items:  []sales.LineInput{line(unidad, "1")},
		IsDebt: true,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreateSale(context.Background(), cajero, sales.CreateSaleInput{
		Items:     []sales.LineInput{{ProductID: "otro", VariantID: unidad, Qty: d("1")}},
		TotalPaid: d("1500"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateSale_SaldoAFavor(t *testing.T) {
	f := newFixture(t, "40")

	res, err := f.uc.CreateSale(context.Background(), cajero, sales.CreateSaleInput{
		CustomerID:       cliente,
		Items:            []sales.LineInput{line(caja12, "1")},
		TotalBalanceUsed: d("10000"),
		TotalPaid:        d("5000"),
	})
	require.NoError(t, err)
	assert.True(t, res.Sale.TotalPrice.Equal(d("5000")))
	assert.True(t, f.customer(t).CreditBalance.IsZero())

	_, err = f.uc.CreateSale(context.Background(), cajero, sales.CreateSaleInput{
		CustomerID:       cliente,
		Items:            []sales.LineInput{line(unidad, "1")},
		TotalBalanceUsed: d("1000"),
		TotalPaid:        d("500"),
	})
	var balErr *domain.BalanceExceededError
	require.True(t, errors.As(err, &balErr))
	assert.True(t, balErr.Available.IsZero())
}

func TestCreateSale_PrecioCongelado(t *testing.T) {
	f := newFixture(t, "40")
	ctx := context.Background()

	res, err := f.uc.CreateSale(ctx, cajero, sales.CreateSaleInput{
		Items:     []sales.LineInput{line(caja12, "1")},
		TotalPaid: d("15000"),
	})
	require.NoError(t, err)

	v, _ := f.repos.Variants.GetByID(ctx, caja12)
	v.SellPrice = d("18000")
	v.ConversionToBase = d("10")
	require.NoError(t, f.repos.Variants.Update(ctx, v))

	got, err := f.uc.GetSale(ctx, res.Sale.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].PriceAtSale.Equal(d("15000")))
	assert.True(t, got.Items[0].UnitFactorAtSale.Equal(d("12")))

	byInvoice, err := f.uc.GetByInvoice(ctx, res.Sale.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, res.Sale.ID, byInvoice.ID)
}

// Dos deudas fiadas; la tercera venta paga la suya y abona a las anteriores, más antigua primero.
func TestCreateSale_AbonoDeudasAnterioresFIFO(t *testing.T) {
	f := newFixture(t, "40")
	ctx := context.Background()

	fiada := func() *sales.SaleResult {
		res, err := f.uc.CreateSale(ctx, cajero, sales.CreateSaleInput{
			CustomerID: cliente,
			Items:      []sales.LineInput{line(unidad, "1")},
			IsDebt:     true,
		})
		require.NoError(t, err)
		return res
	}
	first, second := fiada(), fiada()

	res, err := f.uc.CreateSale(ctx, cajero, sales.CreateSaleInput{
		CustomerID:       cliente,
		Items:            []sales.LineInput{line(unidad, "1")},
		TotalPaid:        d("3500"),
		ShouldPayOldDebt: true,
		IsDebt:           true,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Debt)
	assert.True(t, res.Sale.OldDebtPaid.Equal(d("2000")))
	require.Len(t, res.OldDebtPayments, 2)

	d1, _ := f.repos.Debts.GetByID(ctx, first.Debt.ID)
	d2, _ := f.repos.Debts.GetByID(ctx, second.Debt.ID)
	assert.Equal(t, entity.DebtStatusPaid, d1.Status)
	assert.False(t, d1.IsActive)
	assert.Equal(t, entity.DebtStatusPartial, d2.Status)
	assert.True(t, d2.RemainingAmount.Equal(d("1000")))

	s1, _ := f.uc.GetSale(ctx, first.Sale.ID)
	assert.Equal(t, entity.SaleStatusCompleted, s1.Status)

	// anular la venta revierte los abonos
	_, err = f.uc.CancelSale(ctx, cajero, res.Sale.ID, "error de caja")
	require.NoError(t, err)

	d1, _ = f.repos.Debts.GetByID(ctx, first.Debt.ID)
	d2, _ = f.repos.Debts.GetByID(ctx, second.Debt.ID)
	assert.True(t, d1.RemainingAmount.Equal(d("1500")))
	assert.True(t, d1.IsActive)
	assert.Equal(t, entity.DebtStatusUnpaid, d1.Status)
	assert.True(t, d2.RemainingAmount.Equal(d("1500")))
	s1, _ = f.uc.GetSale(ctx, first.Sale.ID)
	assert.Equal(t, entity.SaleStatusDebt, s1.Status)

	payments, _ := f.repos.Debts.ListPaymentsBySale(ctx, res.Sale.ID)
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	assert.True(t, sum.IsZero())
}

func TestCancelSale_RestauraStockYSaldo(t *testing.T) {
	f := newFixture(t, "40")
	ctx := context.Background()

	res, err := f.uc.CreateSale(ctx, cajero, sales.CreateSaleInput{
		CustomerID:       cliente,
		Items:            []sales.LineInput{line(caja12, "2")},
		TotalBalanceUsed: d("4000"),
		TotalPaid:        d("10000"),
		IsDebt:           true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Debt)
	assert.True(t, f.stock(t).Equal(d("16")))
	assert.True(t, f.customer(t).CreditBalance.Equal(d("6000")))

	cancelled, err := f.uc.CancelSale(ctx, cajero, res.Sale.ID, "")
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.True(t, f.stock(t).Equal(d("40")))
	assert.True(t, f.customer(t).CreditBalance.Equal(d("10000")))

	own, _ := f.repos.Debts.GetByID(ctx, res.Debt.ID)
	assert.Equal(t, entity.DebtStatusCancelled, own.Status)
	assert.False(t, own.IsActive)

	_, err = f.uc.CancelSale(ctx, cajero, res.Sale.ID, "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.uc.CancelSale(ctx, cajero, "no-existe", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateSale_ConservacionDeStock(t *testing.T) {
	f := newFixture(t, "40")
	ctx := context.Background()

	for _, qty := range []string{"1", "7", "2"} {
		_, err := f.uc.CreateSale(ctx, cajero, sales.CreateSaleInput{
			Items:     []sales.LineInput{line(unidad, qty)},
			TotalPaid: d("100000"),
		})
		require.NoError(t, err)
	}
	_, err := f.uc.CreateSale(ctx, cajero, sales.CreateSaleInput{
		Items:     []sales.LineInput{line(caja12, "3")},
		TotalPaid: d("100000"),
	})
	require.Error(t, err)

	muts, _ := f.repos.Mutations.List(ctx, repository.MutationFilter{ProductID: productID})
	sum := decimal.Zero
	for _, m := range muts {
		sum = sum.Add(m.QtyBaseUnit)
	}
	assert.True(t, d("40").Add(sum).Equal(f.stock(t)))
	assert.True(t, f.stock(t).Equal(d("30")))
}
