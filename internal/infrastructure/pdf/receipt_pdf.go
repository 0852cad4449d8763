// Package pdf genera el comprobante de venta del POS en PDF (A5).
//
// Layout:
//
//	┌───────────────────────────────────────┐
//	│  Tienda            │  N° factura/fecha │
//	│  Cliente + estado                     │
//	│  ───────────────────────────────────  │
//	│  Cant | Descripción | P.Unit | Total  │
//	│  ───────────────────────────────────  │
//	│  Subtotal / Saldo a favor / TOTAL     │
//	│  Recibido / Abono deudas / Cambio     │
//	│  QR con el número de factura          │
//	└───────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var _ sales.ReceiptRenderer = (*ReceiptGenerator)(nil)

// ReceiptGenerator implementa sales.ReceiptRenderer con Maroto v2.
type ReceiptGenerator struct{}

// NewReceiptGenerator construye el generador.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// RenderSaleReceipt genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) RenderSaleReceipt(_ context.Context, r *sales.Receipt) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Comprobante "+r.InvoiceNumber, true).
		WithAuthor(nonEmpty(r.StoreName, "POS"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(customerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.4}))
	m.AddRows(tableHeaderRow())
	m.AddRows(lineRows(r.Lines)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(r)...)
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(r))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(r *sales.Receipt) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(nonEmpty(r.StoreName, "Punto de venta"), props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(r.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 6,
			}),
			text.New(r.Date.Format("02/01/2006 15:04"), props.Text{
				Size: 7, Align: align.Right, Top: 12, Color: colorGray,
			}),
		),
	)
}

func customerRow(r *sales.Receipt) core.Row {
	status := map[string]string{
		entity.SaleStatusCompleted: "Pagada",
		entity.SaleStatusDebt:      "Crédito",
		entity.SaleStatusRefunded:  "Devuelta",
		entity.SaleStatusCancelled: "ANULADA",
	}[r.Status]
	statusColor := colorGray
	if r.Status == entity.SaleStatusCancelled {
		statusColor = colorAlert
	}
	return row.New(8).Add(
		col.New(8).Add(text.New("Cliente: "+r.CustomerName, props.Text{Size: 8, Top: 2})),
		col.New(4).Add(text.New(nonEmpty(status, r.Status), props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 2, Color: statusColor,
		})),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a, Color: colorPrimary, Top: 1,
		}))
	}
	return row.New(6).Add(
		h("Cant.", 2, align.Center),
		h("Descripción", 5, align.Left),
		h("P. Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	)
}

func lineRows(lines []sales.ReceiptLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		out = append(out, row.New(6).Add(
			col.New(2).Add(text.New(formatQty(l.Qty), props.Text{Size: 7, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.Description, props.Text{Size: 7, Top: 1})),
			col.New(2).Add(text.New(money(l.UnitPrice), props.Text{Size: 7, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(money(l.Subtotal), props.Text{Size: 7, Align: align.Right, Top: 1})),
		))
	}
	return out
}

// totalsRows solo imprime saldo a favor, abonos y deuda cuando aplican.
func totalsRows(r *sales.Receipt) []core.Row {
	pair := func(label, value string, bold bool) core.Row {
		style := fontstyle.Normal
		var color *props.Color
		if bold {
			style, color = fontstyle.Bold, colorPrimary
		}
		return row.New(5).Add(
			col.New(6),
			col.New(3).Add(text.New(label, props.Text{Style: style, Size: 8, Align: align.Right, Color: color})),
			col.New(3).Add(text.New(value, props.Text{Style: style, Size: 8, Align: align.Right, Color: color})),
		)
	}
	rows := []core.Row{pair("Subtotal:", money(r.Subtotal), false)}
	if r.BalanceUsed.IsPositive() {
		rows = append(rows, pair("Saldo a favor:", "-"+money(r.BalanceUsed), false))
	}
	rows = append(rows, pair("TOTAL:", money(r.Total), true))
	rows = append(rows, pair("Recibido:", money(r.Paid), false))
	if r.OldDebtPaid.IsPositive() {
		rows = append(rows, pair("Abono deudas:", money(r.OldDebtPaid), false))
	}
	rows = append(rows, pair("Cambio:", money(r.Change), false))
	if r.DebtRemaining.IsPositive() {
		rows = append(rows, pair("Saldo pendiente:", money(r.DebtRemaining), true))
	}
	return rows
}

func footerRow(r *sales.Receipt) core.Row {
	return row.New(30).Add(
		col.New(4).Add(code.NewQr(r.InvoiceNumber, props.Rect{Percent: 90, Center: true})),
		col.New(8).Add(
			text.New("Gracias por su compra.", props.Text{Style: fontstyle.Bold, Size: 9, Top: 6, Left: 3}),
			text.New("Presente este comprobante para cambios o devoluciones.", props.Text{
				Size: 7, Top: 13, Left: 3, Color: colorGray,
			}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// money redondea a pesos y agrega puntos de miles: 1234567.8 → "$1.234.568".
func money(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	return sign + "$" + thousands(s)
}

func thousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

// formatQty muestra enteros sin decimales y fracciones con coma: 1.5 → "1,5".
func formatQty(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(0)
	}
	return strings.ReplaceAll(d.String(), ".", ",")
}
