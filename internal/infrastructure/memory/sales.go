package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var (
	_ repository.SaleRepository   = (*SaleRepo)(nil)
	_ repository.ReturnRepository = (*ReturnRepo)(nil)
)

// SaleRepo ventas en memoria.
type SaleRepo struct{ s *conn }

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	return r.s.write(func(st *state) error {
		for _, existing := range st.sales {
			if existing.ID == sale.ID {
				return domain.ErrDuplicate
			}
			if existing.InvoiceNumber == sale.InvoiceNumber {
				return domain.ErrNumberTaken
			}
		}
		st.sales[sale.ID] = copySale(*sale)
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	r.s.read(func(st *state) {
		if sale, ok := st.sales[id]; ok {
			c := copySale(sale)
			out = &c
		}
	})
	return out, nil
}

func (r *SaleRepo) GetByInvoiceNumber(_ context.Context, invoiceNumber string) (*entity.Sale, error) {
	var out *entity.Sale
	r.s.read(func(st *state) {
		for _, sale := range st.sales {
			if sale.InvoiceNumber == invoiceNumber {
				c := copySale(sale)
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) UpdateStatus(_ context.Context, id, status string, cancelledAt *time.Time) error {
	return r.s.write(func(st *state) error {
		sale, ok := st.sales[id]
		if !ok {
			return domain.ErrNotFound
		}
		sale.Status = status
		sale.UpdatedAt = time.Now()
		if cancelledAt != nil {
			sale.CancelledAt = cancelledAt
		}
		st.sales[id] = sale
		return nil
	})
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var list []*entity.Sale
	r.s.read(func(st *state) {
		for _, sale := range st.sales {
			if f.CustomerID != "" && sale.CustomerID != f.CustomerID {
				continue
			}
			if f.Status != "" && sale.Status != f.Status {
				continue
			}
			if f.From != nil && sale.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && sale.CreatedAt.After(*f.To) {
				continue
			}
			c := copySale(sale)
			list = append(list, &c)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, f.Limit, f.Offset), nil
}

// ReturnRepo devoluciones en memoria.
type ReturnRepo struct{ s *conn }

func (r *ReturnRepo) Create(_ context.Context, ret *entity.CustomerReturn) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.sales[ret.SaleID]; !ok {
			return domain.ErrNotFound
		}
		for _, existing := range st.returns {
			if existing.ID == ret.ID {
				return domain.ErrDuplicate
			}
			if existing.ReturnNumber == ret.ReturnNumber {
				return domain.ErrNumberTaken
			}
		}
		st.returns[ret.ID] = copyReturn(*ret)
		return nil
	})
}

func (r *ReturnRepo) GetByID(_ context.Context, id string) (*entity.CustomerReturn, error) {
	var out *entity.CustomerReturn
	r.s.read(func(st *state) {
		if ret, ok := st.returns[id]; ok {
			c := copyReturn(ret)
			out = &c
		}
	})
	return out, nil
}

func (r *ReturnRepo) GetForUpdate(ctx context.Context, id string) (*entity.CustomerReturn, error) {
	return r.GetByID(ctx, id)
}

func (r *ReturnRepo) ListBySale(_ context.Context, saleID string) ([]*entity.CustomerReturn, error) {
	var list []*entity.CustomerReturn
	r.s.read(func(st *state) {
		for _, ret := range st.returns {
			if ret.SaleID == saleID {
				c := copyReturn(ret)
				list = append(list, &c)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (r *ReturnRepo) ReturnedQtyBySaleItem(_ context.Context, saleID string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	r.s.read(func(st *state) {
		for _, ret := range st.returns {
			if ret.SaleID != saleID || ret.Status == entity.ReturnStatusCancelled {
				continue
			}
			for _, it := range ret.Items {
				out[it.SaleItemID] = out[it.SaleItemID].Add(it.Qty)
			}
		}
	})
	return out, nil
}

func (r *ReturnRepo) CountActiveBySale(_ context.Context, saleID string) (int, error) {
	n := 0
	r.s.read(func(st *state) {
		for _, ret := range st.returns {
			if ret.SaleID == saleID && ret.Status != entity.ReturnStatusCancelled {
				n++
			}
		}
	})
	return n, nil
}

func (r *ReturnRepo) MarkCancelled(_ context.Context, id, userID string, at time.Time) error {
	return r.s.write(func(st *state) error {
		ret, ok := st.returns[id]
		if !ok {
			return domain.ErrNotFound
		}
		ret.Status = entity.ReturnStatusCancelled
		ret.CancelledAt = &at
		ret.CancelledBy = userID
		st.returns[id] = ret
		return nil
	})
}
