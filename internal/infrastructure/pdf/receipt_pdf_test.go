package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0", money(decimal.Zero))
	assert.Equal(t, "$950", money(d("950")))
	assert.Equal(t, "$25.000", money(d("25000")))
	assert.Equal(t, "$1.234.568", money(d("1234567.8")))
	assert.Equal(t, "-$14.000", money(d("-14000")))
}

func TestFormatQty(t *testing.T) {
	assert.Equal(t, "3", formatQty(d("3.000")))
	assert.Equal(t, "1,5", formatQty(d("1.5")))
}

func TestRenderSaleReceipt_GeneraPDF(t *testing.T) {
	r := &sales.Receipt{
		StoreName:     "Tienda Don Pepe",
		InvoiceNumber: "INV-20260219-0001",
		Date:          time.Date(2026, 2, 19, 10, 0, 0, 0, time.UTC),
		CustomerName:  "Ana",
		Status:        entity.SaleStatusDebt,
		Lines: []sales.ReceiptLine{
			{Description: "Arroz (Caja x12)", Qty: d("1"), UnitPrice: d("15000"), Subtotal: d("15000")},
			{Description: "Aceite (Botella)", Qty: d("2"), UnitPrice: d("20000"), Subtotal: d("40000")},
		},
		Subtotal:      d("55000"),
		BalanceUsed:   d("5000"),
		Total:         d("50000"),
		Paid:          d("30000"),
		DebtRemaining: d("20000"),
	}
	doc, err := NewReceiptGenerator().RenderSaleReceipt(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}
