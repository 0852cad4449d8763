package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// ReceiptLine línea impresa del comprobante.
type ReceiptLine struct {
	Description string
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// Receipt datos del comprobante de venta, ya resueltos para imprimir.
type Receipt struct {
	StoreName     string
	InvoiceNumber string
	Date          time.Time
	CustomerName  string
	Status        string
	Lines         []ReceiptLine
	Subtotal      decimal.Decimal
	BalanceUsed   decimal.Decimal
	Total         decimal.Decimal
	OldDebtPaid   decimal.Decimal
	Paid          decimal.Decimal
	Change        decimal.Decimal
	DebtRemaining decimal.Decimal
}

// ReceiptRenderer genera el documento (PDF) del comprobante.
type ReceiptRenderer interface {
	RenderSaleReceipt(ctx context.Context, r *Receipt) ([]byte, error)
}

// ReceiptUseCase arma el comprobante de una venta confirmada.
type ReceiptUseCase struct {
	repos     repository.Repos
	renderer  ReceiptRenderer
	storeName string
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(repos repository.Repos, renderer ReceiptRenderer, storeName string) *ReceiptUseCase {
	return &ReceiptUseCase{repos: repos, renderer: renderer, storeName: storeName}
}

// BuildReceipt resuelve nombres de producto y cliente. Las cifras son las congeladas en la venta.
func (uc *ReceiptUseCase) BuildReceipt(ctx context.Context, saleID string) (*Receipt, error) {
	sale, err := uc.repos.Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	r := &Receipt{
		StoreName:     uc.storeName,
		InvoiceNumber: sale.InvoiceNumber,
		Date:          sale.CreatedAt,
		CustomerName:  "Cliente ocasional",
		Status:        sale.Status,
		Subtotal:      sale.Subtotal,
		BalanceUsed:   sale.TotalBalanceUsed,
		Total:         sale.TotalPrice,
		OldDebtPaid:   sale.OldDebtPaid,
		Paid:          sale.TotalPaid,
		Change:        sale.TotalReturn,
	}
	if sale.CustomerID != "" {
		c, err := uc.repos.Customers.GetByID(ctx, sale.CustomerID)
		if err != nil {
			return nil, err
		}
		if c != nil {
			r.CustomerName = c.Name
		}
	}
	names := map[string]string{}
	for _, it := range sale.Items {
		name, ok := names[it.ProductID]
		if !ok {
			p, err := uc.repos.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return nil, err
			}
			if p != nil {
				name = p.Name
			}
			names[it.ProductID] = name
		}
		desc := name
		if it.VariantName != "" {
			desc = fmt.Sprintf("%s (%s)", name, it.VariantName)
		}
		r.Lines = append(r.Lines, ReceiptLine{Description: desc, Qty: it.Qty, UnitPrice: it.PriceAtSale, Subtotal: it.Subtotal})
	}
	d, err := uc.repos.Debts.GetBySaleID(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	if d != nil && d.IsActive {
		r.DebtRemaining = d.RemainingAmount
	}
	return r, nil
}

// DownloadReceipt devuelve el PDF y el nombre de archivo sugerido.
func (uc *ReceiptUseCase) DownloadReceipt(ctx context.Context, saleID string) ([]byte, string, error) {
	r, err := uc.BuildReceipt(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	doc, err := uc.renderer.RenderSaleReceipt(ctx, r)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante %s: %w", r.InvoiceNumber, err)
	}
	return doc, r.InvoiceNumber + ".pdf", nil
}
