package returns_test

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
	"github.com/jhoicas/pos-api/internal/application/returns"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/infrastructure/sequence"
	"github.com/jhoicas/pos-api/pkg/logger"
)

const (
	arroz   = "p-arroz"
	caja12  = "v-caja12"
	aceite  = "p-aceite"
	botella = "v-botella"
	cliente = "c-ana"
	cajero  = "u-cajero"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store   *memory.Store
	repos   repository.Repos
	sales   *sales.UseCase
	returns *returns.UseCase
}

// arroz: stock 100, caja x12 a 15000. aceite: stock 10, botella a 20000. Cliente sin saldo.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	now := time.Now()

	for _, p := range []entity.Product{
		{ID: arroz, SKU: "ARZ", Name: "Arroz", BaseUnit: "unidad", Stock: d("100"), AverageCost: d("1000"), IsActive: true, CreatedAt: now},
		{ID: aceite, SKU: "ACE", Name: "Aceite", BaseUnit: "unidad", Stock: d("10"), AverageCost: d("12000"), IsActive: true, CreatedAt: now},
	} {
		p := p
		require.NoError(t, repos.Products.Create(ctx, &p))
	}
	require.NoError(t, repos.Variants.Create(ctx, &entity.ProductVariant{
		ID: caja12, ProductID: arroz, Name: "Caja x12", ConversionToBase: d("12"), SellPrice: d("15000"), IsActive: true,
	}))
	require.NoError(t, repos.Variants.Create(ctx, &entity.ProductVariant{
		ID: botella, ProductID: aceite, Name: "Botella", ConversionToBase: d("1"), SellPrice: d("20000"), IsActive: true,
	}))
	require.NoError(t, repos.Customers.Create(ctx, &entity.Customer{ID: cliente, Name: "Ana", CreatedAt: now}))

	ledger := appinventory.NewStockLedger(nil)
	numbers := sequence.NewLocalGenerator()
	return &fixture{
		store:   store,
		repos:   repos,
		sales:   sales.NewUseCase(store, ledger, numbers, ports.PrefixInvoice, repos.Sales, nil, logger.Nop()),
		returns: returns.NewUseCase(store, ledger, numbers, ports.PrefixReturn, repos, nil, logger.Nop()),
	}
}

func (f *fixture) sell(t *testing.T, customerID, productID, variantID, qty, paid string) *entity.Sale {
	t.Helper()
	res, err := f.sales.CreateSale(context.Background(), cajero, sales.CreateSaleInput{
		CustomerID: customerID,
		Items:      []sales.LineInput{{ProductID: productID, VariantID: variantID, Qty: d(qty)}},
		TotalPaid:  d(paid),
	})
	require.NoError(t, err)
	return res.Sale
}

func (f *fixture) stock(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	p, err := f.repos.Products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) credit(t *testing.T) decimal.Decimal {
	t.Helper()
	c, err := f.repos.Customers.GetByID(context.Background(), cliente)
	require.NoError(t, err)
	return c.CreditBalance
}

func refund(invoice, saleItemID, qty string, restock bool) returns.CreateReturnInput {
	return returns.CreateReturnInput{
		InvoiceNumber:    invoice,
		Items:            []returns.ReturnLineInput{{SaleItemID: saleItemID, Qty: d(qty), ReturnedToStock: restock}},
		CompensationType: entity.CompensationRefund,
	}
}

func TestFlow_SoloAvanzaEnOrden(t *testing.T) {
	f := returns.NewFlow()
	assert.Equal(t, returns.StepInvoiceLookup, f.Step())
	assert.Error(t, f.Advance(returns.StepCompensationSelection))
	require.NoError(t, f.Advance(returns.StepItemSelection))
	require.NoError(t, f.Advance(returns.StepCompensationSelection))
	require.NoError(t, f.Advance(returns.StepCommitted))
	assert.Error(t, f.Advance(returns.StepCommitted))
}

func TestCreateReturn_DevolucionParcialYAcumulada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.sell(t, "", arroz, caja12, "5", "75000")
	itemID := sale.Items[0].ID
	require.True(t, f.stock(t, arroz).Equal(d("40")))

	res, err := f.returns.CreateReturn(ctx, cajero, refund(sale.InvoiceNumber, itemID, "2", true))
	require.NoError(t, err)
	assert.Equal(t, returns.StepCommitted, res.Step)
	assert.True(t, f.stock(t, arroz).Equal(d("64")))
	assert.True(t, res.Return.TotalRefund.Equal(d("30000")))
	assert.Equal(t, entity.SaleStatusCompleted, res.SaleStatus)

	look, err := f.returns.LookupReturnable(ctx, sale.InvoiceNumber)
	require.NoError(t, err)
	assert.True(t, look.Items[0].ReturnedQty.Equal(d("2")))
	assert.True(t, look.Items[0].MaxReturnable.Equal(d("3")))

	res, err = f.returns.CreateReturn(ctx, cajero, refund(sale.InvoiceNumber, itemID, "3", true))
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusRefunded, res.SaleStatus)
	assert.True(t, f.stock(t, arroz).Equal(d("100")))

	_, err = f.returns.CreateReturn(ctx, cajero, refund(sale.InvoiceNumber, itemID, "1", true))
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "items[0].qty")

	list, err := f.returns.ListReturnsBySale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCreateReturn_PrecioCongelado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.sell(t, "", arroz, caja12, "2", "30000")

	v, _ := f.repos.Variants.GetByID(ctx, caja12)
	v.SellPrice = d("99000")
	require.NoError(t, f.repos.Variants.Update(ctx, v))

	res, err := f.returns.CreateReturn(ctx, cajero, refund(sale.InvoiceNumber, sale.Items[0].ID, "1", true))
	require.NoError(t, err)
	assert.True(t, res.Return.TotalValueReturned.Equal(d("15000")))
	assert.True(t, res.Return.Items[0].UnitFactorAtReturn.Equal(d("12")))
}

func TestCreateReturn_MermaRegistraAuditoriaSinStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.sell(t, "", arroz, caja12, "1", "15000")

	res, err := f.returns.CreateReturn(ctx, cajero, refund(sale.InvoiceNumber, sale.Items[0].ID, "1", false))
	require.NoError(t, err)
	assert.True(t, f.stock(t, arroz).Equal(d("88")))

	muts, _ := f.repos.Mutations.List(ctx, repository.MutationFilter{ProductID: arroz})
	last := muts[len(muts)-1]
	assert.Equal(t, entity.MutationWaste, last.Type)
	assert.True(t, last.QtyBaseUnit.IsZero())
	assert.Equal(t, res.Return.ReturnNumber, last.Reference)
}

func TestCreateReturn_CambioSuperaValorDevuelto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.sell(t, cliente, aceite, botella, "5", "100000")
	before, _ := f.repos.Mutations.List(ctx, repository.MutationFilter{})

	_, err := f.returns.CreateReturn(ctx, cajero, returns.CreateReturnInput{
		InvoiceNumber:    sale.InvoiceNumber,
		Items:            []returns.ReturnLineInput{{SaleItemID: sale.Items[0].ID, Qty: d("5"), ReturnedToStock: true}},
		CompensationType: entity.CompensationExchange,
		ExchangeItems:    []returns.ExchangeLineInput{{ProductID: aceite, VariantID: botella, Qty: d("6")}},
	})
	var overErr *domain.ExchangeOverLimitError
	require.True(t, errors.As(err, &overErr))
	assert.True(t, overErr.ReturnedValue.Equal(d("100000")))
	assert.True(t, overErr.ExchangeValue.Equal(d("120000")))

	after, _ := f.repos.Mutations.List(ctx, repository.MutationFilter{})
	assert.Len(t, after, len(before))
	assert.True(t, f.stock(t, aceite).Equal(d("5")))
	assert.True(t, f.credit(t).IsZero())
}

func TestCreateReturn_CambioConExcedenteASaldoYAnulacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.sell(t, cliente, aceite, botella, "5", "100000")

	res, err := f.returns.CreateReturn(ctx, cajero, returns.CreateReturnInput{
		InvoiceNumber:      sale.InvoiceNumber,
		Items:              []returns.ReturnLineInput{{SaleItemID: sale.Items[0].ID, Qty: d("5"), ReturnedToStock: true}},
		CompensationType:   entity.CompensationExchange,
		SurplusDisposition: entity.SurplusCreditBalance,
		ExchangeItems:      []returns.ExchangeLineInput{{ProductID: aceite, VariantID: botella, Qty: d("4")}},
	})
	require.NoError(t, err)
	assert.True(t, res.Return.TotalValueExchange.Equal(d("80000")))
	assert.True(t, res.Return.CreditAdded.Equal(d("20000")))
	assert.True(t, f.credit(t).Equal(d("20000")))
	assert.True(t, f.stock(t, aceite).Equal(d("6")))
	assert.Equal(t, entity.SaleStatusRefunded, res.SaleStatus)

	cancelled, err := f.returns.CancelReturn(ctx, cajero, res.Return.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnStatusCancelled, cancelled.Status)
	assert.True(t, f.stock(t, aceite).Equal(d("5")))
	assert.True(t, f.credit(t).IsZero())

	s, _ := f.sales.GetSale(ctx, sale.ID)
	assert.Equal(t, entity.SaleStatusCompleted, s.Status)

	_, err = f.returns.CancelReturn(ctx, cajero, res.Return.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	look, _ := f.returns.LookupReturnable(ctx, sale.InvoiceNumber)
	assert.True(t, look.Items[0].MaxReturnable.Equal(d("5")))
}

func TestCreateReturn_NotaCreditoAsignaClienteAVentaOcasional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.sell(t, "", arroz, caja12, "2", "30000")

	in := returns.CreateReturnInput{
		InvoiceNumber:    sale.InvoiceNumber,
		Items:            []returns.ReturnLineInput{{SaleItemID: sale.Items[0].ID, Qty: d("2"), ReturnedToStock: true}},
		CompensationType: entity.CompensationCreditNote,
	}
	_, err := f.returns.CreateReturn(ctx, cajero, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in.CustomerID = cliente
	res, err := f.returns.CreateReturn(ctx, cajero, in)
	require.NoError(t, err)
	assert.Equal(t, cliente, res.Return.CustomerID)
	assert.True(t, f.credit(t).Equal(d("30000")))

	// el saldo se gasta y la anulación ya no puede descontarlo
	_, err = f.sales.CreateSale(ctx, cajero, sales.CreateSaleInput{
		CustomerID:       cliente,
		Items:            []sales.LineInput{{ProductID: arroz, VariantID: caja12, Qty: d("2")}},
		TotalBalanceUsed: d("30000"),
	})
	require.NoError(t, err)

	_, err = f.returns.CancelReturn(ctx, cajero, res.Return.ID)
	assert.ErrorIs(t, err, domain.ErrBalanceExceeded)
}

func TestCreateReturn_BloqueadaPorDeuda(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.sales.CreateSale(ctx, cajero, sales.CreateSaleInput{
		CustomerID: cliente,
		Items:      []sales.LineInput{{ProductID: arroz, VariantID: caja12, Qty: d("1")}},
		TotalPaid:  d("5000"),
		IsDebt:     true,
	})
	require.NoError(t, err)

	look, err := f.returns.LookupReturnable(ctx, res.Sale.InvoiceNumber)
	require.NoError(t, err)
	assert.True(t, look.Blocked)

	_, err = f.returns.CreateReturn(ctx, cajero, refund(res.Sale.InvoiceNumber, res.Sale.Items[0].ID, "1", true))
	var debtErr *domain.DebtOutstandingError
	require.True(t, errors.As(err, &debtErr))
	assert.True(t, debtErr.Remaining.Equal(d("10000")))
}

func TestCreateReturn_NoEncontradaYAnulada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.returns.LookupReturnable(ctx, "INV-NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sale := f.sell(t, "", arroz, caja12, "1", "15000")
	_, err = f.sales.CancelSale(ctx, cajero, sale.ID, "")
	require.NoError(t, err)

	_, err = f.returns.CreateReturn(ctx, cajero, refund(sale.InvoiceNumber, sale.Items[0].ID, "1", true))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCancelSale_ConDevolucionActivaEsConflicto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.sell(t, "", arroz, caja12, "2", "30000")

	_, err := f.returns.CreateReturn(ctx, cajero, refund(sale.InvoiceNumber, sale.Items[0].ID, "1", true))
	require.NoError(t, err)

	_, err = f.sales.CancelSale(ctx, cajero, sale.ID, "")
	assert.ErrorIs(t, err, domain.ErrConflict)
}
