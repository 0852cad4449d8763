package returns

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/debt"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// ReturnableItem línea de la venta con lo ya devuelto y lo que aún se puede devolver.
type ReturnableItem struct {
	entity.SaleItem
	ReturnedQty   decimal.Decimal
	MaxReturnable decimal.Decimal
}

// ReturnableSale resultado del paso invoice_lookup.
type ReturnableSale struct {
	Sale    *entity.Sale
	Items   []ReturnableItem
	Debt    *entity.Debt
	Blocked bool // deuda activa: no admite devoluciones
}

// LookupReturnable busca la venta por factura y calcula maxReturnable por línea.
func (uc *UseCase) LookupReturnable(ctx context.Context, invoiceNumber string) (*ReturnableSale, error) {
	sale, err := uc.repos.Sales.GetByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return buildReturnable(ctx, uc.repos, sale)
}

func buildReturnable(ctx context.Context, repos repository.Repos, sale *entity.Sale) (*ReturnableSale, error) {
	returned, err := repos.Returns.ReturnedQtyBySaleItem(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	d, err := repos.Debts.GetBySaleID(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	out := &ReturnableSale{Sale: sale, Debt: d, Blocked: debt.Outstanding(d)}
	for _, it := range sale.Items {
		done := returned[it.ID]
		max := it.Qty.Sub(done)
		if max.IsNegative() {
			max = decimal.Zero
		}
		out.Items = append(out.Items, ReturnableItem{SaleItem: it, ReturnedQty: done, MaxReturnable: max})
	}
	return out, nil
}

// GetReturn devuelve una devolución con sus líneas.
func (uc *UseCase) GetReturn(ctx context.Context, id string) (*entity.CustomerReturn, error) {
	r, err := uc.repos.Returns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// ListReturnsBySale devoluciones de una venta, más antigua primero.
func (uc *UseCase) ListReturnsBySale(ctx context.Context, saleID string) ([]*entity.CustomerReturn, error) {
	return uc.repos.Returns.ListBySale(ctx, saleID)
}
