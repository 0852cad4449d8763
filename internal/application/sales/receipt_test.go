package sales_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
)

type captureRenderer struct {
	got *sales.Receipt
	err error
}

func (r *captureRenderer) RenderSaleReceipt(_ context.Context, rc *sales.Receipt) ([]byte, error) {
	r.got = rc
	return []byte("%PDF-fake"), r.err
}

func TestReceipt_FiadoConCliente(t *testing.T) {
	f := newFixture(t, "40")
	ctx := context.Background()
	res, err := f.uc.CreateSale(ctx, cajero, sales.CreateSaleInput{
		CustomerID: cliente,
		Items:      []sales.LineInput{line(caja12, "1"), line(unidad, "2")},
		TotalPaid:  d("10000"),
		IsDebt:     true,
	})
	require.NoError(t, err)

	renderer := &captureRenderer{}
	uc := sales.NewReceiptUseCase(f.repos, renderer, "Tienda Don Pepe")
	doc, filename, err := uc.DownloadReceipt(ctx, res.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(doc))
	assert.Equal(t, res.Sale.InvoiceNumber+".pdf", filename)

	r := renderer.got
	require.NotNil(t, r)
	assert.Equal(t, "Tienda Don Pepe", r.StoreName)
	assert.Equal(t, "Ana", r.CustomerName)
	require.Len(t, r.Lines, 2)
	assert.Equal(t, "Arroz (Caja x12)", r.Lines[0].Description)
	assert.True(t, r.Total.Equal(d("18000")))
	assert.True(t, r.DebtRemaining.Equal(d("8000")), r.DebtRemaining.String())
}

func TestReceipt_Errores(t *testing.T) {
	f := newFixture(t, "40")
	ctx := context.Background()

	uc := sales.NewReceiptUseCase(f.repos, &captureRenderer{}, "")
	_, _, err := uc.DownloadReceipt(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	res, err := f.uc.CreateSale(ctx, cajero, sales.CreateSaleInput{
		Items:     []sales.LineInput{line(unidad, "1")},
		TotalPaid: d("1500"),
	})
	require.NoError(t, err)
	boom := errors.New("sin fuentes")
	uc = sales.NewReceiptUseCase(f.repos, &captureRenderer{err: boom}, "")
	_, _, err = uc.DownloadReceipt(ctx, res.Sale.ID)
	assert.ErrorIs(t, err, boom)

	r, err := uc.BuildReceipt(ctx, res.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cliente ocasional", r.CustomerName)
	assert.True(t, r.DebtRemaining.IsZero())
}
