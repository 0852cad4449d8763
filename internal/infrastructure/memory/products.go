package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.VariantRepository       = (*VariantRepo)(nil)
	_ repository.StockMutationRepository = (*MutationRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ s *conn }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, existing := range st.products {
			if existing.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.s.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

// GetForUpdate no necesita bloqueo propio: Store.Run ya serializa.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.s.read(func(st *state) {
		for _, p := range st.products {
			if p.SKU == sku {
				p := p
				out = &p
				return
			}
		}
	})
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Name = p.Name
		cur.Description = p.Description
		cur.BaseUnit = p.BaseUnit
		cur.MinStock = p.MinStock
		cur.IsActive = p.IsActive
		cur.UpdatedAt = p.UpdatedAt
		st.products[p.ID] = cur
		return nil
	})
}

func (r *ProductRepo) UpdateCosts(_ context.Context, productID string, averageCost, lastPurchaseCost decimal.Decimal) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.AverageCost = averageCost
		cur.LastPurchaseCost = lastPurchaseCost
		cur.UpdatedAt = time.Now()
		st.products[productID] = cur
		return nil
	})
}

// AddStock replica el CHECK (stock >= 0) de la tabla.
func (r *ProductRepo) AddStock(_ context.Context, productID string, delta decimal.Decimal) (decimal.Decimal, error) {
	var after decimal.Decimal
	err := r.s.write(func(st *state) error {
		cur, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		next := cur.Stock.Add(delta)
		if next.IsNegative() {
			return fmt.Errorf("add stock %s: stock negativo", productID)
		}
		cur.Stock = next
		cur.UpdatedAt = time.Now()
		st.products[productID] = cur
		after = next
		return nil
	})
	return after, err
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var list []*entity.Product
	r.s.read(func(st *state) {
		for _, p := range st.products {
			p := p
			list = append(list, &p)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

func (r *ProductRepo) ListBelowMinStock(_ context.Context) ([]*entity.Product, error) {
	var list []*entity.Product
	r.s.read(func(st *state) {
		for _, p := range st.products {
			if p.IsActive && p.Stock.LessThan(p.MinStock) {
				p := p
				list = append(list, &p)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// VariantRepo variantes en memoria.
type VariantRepo struct{ s *conn }

func (r *VariantRepo) Create(_ context.Context, v *entity.ProductVariant) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.products[v.ProductID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.variants[v.ID]; ok {
			return domain.ErrDuplicate
		}
		st.variants[v.ID] = *v
		return nil
	})
}

func (r *VariantRepo) GetByID(_ context.Context, id string) (*entity.ProductVariant, error) {
	var out *entity.ProductVariant
	r.s.read(func(st *state) {
		if v, ok := st.variants[id]; ok {
			out = &v
		}
	})
	return out, nil
}

func (r *VariantRepo) Update(_ context.Context, v *entity.ProductVariant) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.variants[v.ID]; !ok {
			return domain.ErrNotFound
		}
		st.variants[v.ID] = *v
		return nil
	})
}

func (r *VariantRepo) ListByProduct(_ context.Context, productID string) ([]*entity.ProductVariant, error) {
	var list []*entity.ProductVariant
	r.s.read(func(st *state) {
		for _, v := range st.variants {
			if v.ProductID == productID {
				v := v
				list = append(list, &v)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool {
		return list[i].ConversionToBase.LessThan(list[j].ConversionToBase)
	})
	return list, nil
}

// MutationRepo kardex en memoria (orden de inserción = orden de creación).
type MutationRepo struct{ s *conn }

func (r *MutationRepo) Create(_ context.Context, m *entity.StockMutation) error {
	return r.s.write(func(st *state) error {
		m.Seq = int64(len(st.mutations) + 1)
		st.mutations = append(st.mutations, *m)
		return nil
	})
}

func (r *MutationRepo) List(_ context.Context, f repository.MutationFilter) ([]*entity.StockMutation, error) {
	var list []*entity.StockMutation
	r.s.read(func(st *state) {
		for _, m := range st.mutations {
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.VariantID != "" && m.VariantID != f.VariantID {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			m := m
			list = append(list, &m)
		}
	})
	return page(list, f.Limit, f.Offset), nil
}
