package sales

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// GetSale obtiene una venta con sus líneas.
func (uc *UseCase) GetSale(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// GetByInvoice busca por número de factura.
func (uc *UseCase) GetByInvoice(ctx context.Context, invoiceNumber string) (*entity.Sale, error) {
	s, err := uc.sales.GetByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// ListSales lista ventas, más recientes primero.
func (uc *UseCase) ListSales(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return uc.sales.List(ctx, f)
}
