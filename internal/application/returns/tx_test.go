package returns_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/application/ports/portstest"
	"github.com/jhoicas/pos-api/internal/application/returns"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/sequence"
	"github.com/jhoicas/pos-api/pkg/logger"
)

func (f *fixture) wrapped() (*returns.UseCase, *portstest.TxRunner) {
	tr := portstest.Wrap(f.store)
	uc := returns.NewUseCase(tr, appinventory.NewStockLedger(nil), sequence.NewLocalGenerator(), ports.PrefixReturn, f.repos, nil, logger.Nop())
	return uc, tr
}

func cambio(sale *entity.Sale) returns.CreateReturnInput {
	return returns.CreateReturnInput{
		InvoiceNumber:      sale.InvoiceNumber,
		Items:              []returns.ReturnLineInput{{SaleItemID: sale.Items[0].ID, Qty: d("5"), ReturnedToStock: true}},
		CompensationType:   entity.CompensationExchange,
		SurplusDisposition: entity.SurplusCreditBalance,
		ExchangeItems:      []returns.ExchangeLineInput{{ProductID: aceite, VariantID: botella, Qty: d("4")}},
	}
}

func TestCreateReturn_FallaDeEscrituraNoDejaRastro(t *testing.T) {
	ctx := context.Background()
	for _, op := range []string{
		portstest.FailReturnCreate,
		portstest.FailMutationCreate,
		portstest.FailCreditBalance,
	} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t)
			sale := f.sell(t, cliente, aceite, botella, "5", "100000")
			muts, _ := f.repos.Mutations.List(ctx, repository.MutationFilter{ProductID: aceite})

			uc, tr := f.wrapped()
			tr.FailOn(op)
			_, err := uc.CreateReturn(ctx, cajero, cambio(sale))
			require.ErrorIs(t, err, portstest.ErrInjected)

			assert.True(t, f.stock(t, aceite).Equal(d("5")))
			assert.True(t, f.credit(t).IsZero())
			after, _ := f.repos.Mutations.List(ctx, repository.MutationFilter{ProductID: aceite})
			assert.Len(t, after, len(muts))
			list, err := f.returns.ListReturnsBySale(ctx, sale.ID)
			require.NoError(t, err)
			assert.Empty(t, list)
			s, _ := f.sales.GetSale(ctx, sale.ID)
			assert.Equal(t, entity.SaleStatusCompleted, s.Status)
		})
	}
}

func TestOrdenDeBloqueos_DevolucionYAnulacion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sale := f.sell(t, cliente, aceite, botella, "5", "100000")
	uc, tr := f.wrapped()

	res, err := uc.CreateReturn(ctx, cajero, cambio(sale))
	require.NoError(t, err)
	locks := tr.Locks()
	assert.True(t, portstest.InOrder(locks), "%v", locks)
	require.NotEmpty(t, locks)
	assert.Equal(t, portstest.Lock{Kind: portstest.LockCustomer, ID: cliente}, locks[0])

	tr.Reset()
	_, err = uc.CancelReturn(ctx, cajero, res.Return.ID)
	require.NoError(t, err)
	locks = tr.Locks()
	assert.True(t, portstest.InOrder(locks), "%v", locks)
	assert.Equal(t, portstest.LockCustomer, locks[0].Kind)
	assert.Contains(t, locks, portstest.Lock{Kind: portstest.LockDocument, ID: "return:" + res.Return.ID})
	assert.Contains(t, locks, portstest.Lock{Kind: portstest.LockDocument, ID: "sale:" + sale.ID})
}
