package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var (
	_ repository.CustomerRepository = (*CustomerRepo)(nil)
	_ repository.DebtRepository     = (*DebtRepo)(nil)
	_ repository.PurchaseRepository = (*PurchaseRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// CustomerRepo clientes en memoria.
type CustomerRepo struct{ s *conn }

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.customers[c.ID]; ok {
			return domain.ErrDuplicate
		}
		st.customers[c.ID] = *c
		return nil
	})
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	r.s.read(func(st *state) {
		if c, ok := st.customers[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r *CustomerRepo) GetForUpdate(ctx context.Context, id string) (*entity.Customer, error) {
	return r.GetByID(ctx, id)
}

func (r *CustomerRepo) List(_ context.Context, search string, limit, offset int) ([]*entity.Customer, error) {
	search = strings.ToLower(strings.TrimSpace(search))
	var list []*entity.Customer
	r.s.read(func(st *state) {
		for _, c := range st.customers {
			if search != "" && !strings.Contains(strings.ToLower(c.Name), search) && !strings.Contains(c.Phone, search) {
				continue
			}
			c := c
			list = append(list, &c)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

func (r *CustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.customers[c.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Name = c.Name
		cur.Phone = c.Phone
		cur.Email = c.Email
		cur.Address = c.Address
		cur.UpdatedAt = c.UpdatedAt
		st.customers[c.ID] = cur
		return nil
	})
}

func (r *CustomerRepo) UpdateCreditBalance(_ context.Context, id string, balance decimal.Decimal) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.customers[id]
		if !ok {
			return domain.ErrNotFound
		}
		cur.CreditBalance = balance
		cur.UpdatedAt = time.Now()
		st.customers[id] = cur
		return nil
	})
}

// DebtRepo deudas y abonos en memoria.
type DebtRepo struct{ s *conn }

func (r *DebtRepo) Create(_ context.Context, d *entity.Debt) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.debts[d.ID]; ok {
			return domain.ErrDuplicate
		}
		st.debts[d.ID] = *d
		st.debtOrder = append(st.debtOrder, d.ID)
		return nil
	})
}

func (r *DebtRepo) GetByID(_ context.Context, id string) (*entity.Debt, error) {
	var out *entity.Debt
	r.s.read(func(st *state) {
		if d, ok := st.debts[id]; ok {
			out = &d
		}
	})
	return out, nil
}

func (r *DebtRepo) GetForUpdate(ctx context.Context, id string) (*entity.Debt, error) {
	return r.GetByID(ctx, id)
}

func (r *DebtRepo) GetBySaleID(_ context.Context, saleID string) (*entity.Debt, error) {
	var out *entity.Debt
	r.s.read(func(st *state) {
		for _, id := range st.debtOrder {
			if d := st.debts[id]; d.SaleID == saleID {
				out = &d
				return
			}
		}
	})
	return out, nil
}

func (r *DebtRepo) ListActiveByCustomerForUpdate(ctx context.Context, customerID string) ([]*entity.Debt, error) {
	return r.ListByCustomer(ctx, customerID, true)
}

// ListByCustomer devuelve en orden de creación (más antigua primero).
func (r *DebtRepo) ListByCustomer(_ context.Context, customerID string, onlyActive bool) ([]*entity.Debt, error) {
	var list []*entity.Debt
	r.s.read(func(st *state) {
		for _, id := range st.debtOrder {
			d := st.debts[id]
			if d.CustomerID != customerID || (onlyActive && !d.IsActive) {
				continue
			}
			list = append(list, &d)
		}
	})
	return list, nil
}

func (r *DebtRepo) Update(_ context.Context, d *entity.Debt) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.debts[d.ID]; !ok {
			return domain.ErrNotFound
		}
		st.debts[d.ID] = *d
		return nil
	})
}

func (r *DebtRepo) CreatePayment(_ context.Context, p *entity.DebtPayment) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.debts[p.DebtID]; !ok {
			return domain.ErrNotFound
		}
		st.payments = append(st.payments, *p)
		return nil
	})
}

func (r *DebtRepo) ListPaymentsBySale(_ context.Context, saleID string) ([]*entity.DebtPayment, error) {
	var list []*entity.DebtPayment
	r.s.read(func(st *state) {
		for _, p := range st.payments {
			if p.SaleID == saleID {
				p := p
				list = append(list, &p)
			}
		}
	})
	return list, nil
}

func (r *DebtRepo) ListPayments(_ context.Context, debtID string) ([]*entity.DebtPayment, error) {
	var list []*entity.DebtPayment
	r.s.read(func(st *state) {
		for _, p := range st.payments {
			if p.DebtID == debtID {
				p := p
				list = append(list, &p)
			}
		}
	})
	return list, nil
}

// PurchaseRepo compras en memoria.
type PurchaseRepo struct{ s *conn }

func (r *PurchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	return r.s.write(func(st *state) error {
		for _, existing := range st.purchases {
			if existing.ID == p.ID {
				return domain.ErrDuplicate
			}
			if existing.Reference == p.Reference {
				return domain.ErrNumberTaken
			}
		}
		st.purchases[p.ID] = copyPurchase(*p)
		return nil
	})
}

func (r *PurchaseRepo) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	var out *entity.Purchase
	r.s.read(func(st *state) {
		if p, ok := st.purchases[id]; ok {
			c := copyPurchase(p)
			out = &c
		}
	})
	return out, nil
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.GetByID(ctx, id)
}

func (r *PurchaseRepo) MarkCancelled(_ context.Context, id string, at time.Time) error {
	return r.s.write(func(st *state) error {
		p, ok := st.purchases[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.Status = entity.PurchaseStatusCancelled
		p.CancelledAt = &at
		st.purchases[id] = p
		return nil
	})
}

func (r *PurchaseRepo) List(_ context.Context, limit, offset int) ([]*entity.Purchase, error) {
	var list []*entity.Purchase
	r.s.read(func(st *state) {
		for _, p := range st.purchases {
			c := copyPurchase(p)
			list = append(list, &c)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

// UserRepo usuarios en memoria.
type UserRepo struct{ s *conn }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.s.write(func(st *state) error {
		for _, existing := range st.users {
			if existing.Username == u.Username {
				return domain.ErrUsernameAlreadyExists
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.s.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	var out *entity.User
	r.s.read(func(st *state) {
		for _, u := range st.users {
			if u.Username == username {
				u := u
				out = &u
				return
			}
		}
	})
	return out, nil
}
