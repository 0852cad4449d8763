// Package portstest envuelve un ports.TxRunner para tests: registra el orden de los
// bloqueos pedidos dentro de la transacción y puede hacer fallar escrituras.
package portstest

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// ErrInjected es el error que devuelven las escrituras marcadas para fallar.
var ErrInjected = errors.New("falla inyectada")

// Escrituras que se pueden hacer fallar.
const (
	FailSaleCreate     = "sales.create"
	FailMutationCreate = "mutations.create"
	FailDebtCreate     = "debts.create"
	FailDebtPayment    = "debts.create_payment"
	FailCreditBalance  = "customers.update_credit_balance"
	FailReturnCreate   = "returns.create"
)

// Clases de bloqueo en el orden en que deben pedirse.
const (
	LockCustomer = iota
	LockDocument
	LockDebt
	LockProduct
)

// Lock bloqueo pedido dentro de la transacción.
type Lock struct {
	Kind int
	ID   string
}

// TxRunner delega en Next.
type TxRunner struct {
	Next ports.TxRunner

	mu    sync.Mutex
	fail  map[string]bool
	locks []Lock
}

var _ ports.TxRunner = (*TxRunner)(nil)

// Wrap construye el runner.
func Wrap(next ports.TxRunner) *TxRunner {
	return &TxRunner{Next: next, fail: map[string]bool{}}
}

// FailOn marca escrituras para que devuelvan ErrInjected.
func (r *TxRunner) FailOn(ops ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, op := range ops {
		r.fail[op] = true
	}
}

// Reset limpia fallas y bloqueos registrados.
func (r *TxRunner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = map[string]bool{}
	r.locks = nil
}

// Locks bloqueos registrados desde el último Reset.
func (r *TxRunner) Locks() []Lock {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Lock(nil), r.locks...)
}

// InOrder indica si las clases de bloqueo nunca retroceden.
func InOrder(locks []Lock) bool {
	for i := 1; i < len(locks); i++ {
		if locks[i].Kind < locks[i-1].Kind {
			return false
		}
	}
	return true
}

func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	return r.Next.Run(ctx, func(repos repository.Repos) error {
		return fn(r.wrap(repos))
	})
}

func (r *TxRunner) lock(kind int, id string) {
	r.mu.Lock()
	r.locks = append(r.locks, Lock{Kind: kind, ID: id})
	r.mu.Unlock()
}

func (r *TxRunner) failing(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[op] {
		return ErrInjected
	}
	return nil
}

func (r *TxRunner) wrap(repos repository.Repos) repository.Repos {
	repos.Products = products{ProductRepository: repos.Products, r: r}
	repos.Mutations = mutations{StockMutationRepository: repos.Mutations, r: r}
	repos.Customers = customers{CustomerRepository: repos.Customers, r: r}
	repos.Sales = sales{SaleRepository: repos.Sales, r: r}
	repos.Debts = debts{DebtRepository: repos.Debts, r: r}
	repos.Returns = returns{ReturnRepository: repos.Returns, r: r}
	repos.Purchases = purchases{PurchaseRepository: repos.Purchases, r: r}
	return repos
}

type products struct {
	repository.ProductRepository
	r *TxRunner
}

func (p products) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	p.r.lock(LockProduct, id)
	return p.ProductRepository.GetForUpdate(ctx, id)
}

type mutations struct {
	repository.StockMutationRepository
	r *TxRunner
}

func (m mutations) Create(ctx context.Context, mut *entity.StockMutation) error {
	if err := m.r.failing(FailMutationCreate); err != nil {
		return err
	}
	return m.StockMutationRepository.Create(ctx, mut)
}

type customers struct {
	repository.CustomerRepository
	r *TxRunner
}

func (c customers) GetForUpdate(ctx context.Context, id string) (*entity.Customer, error) {
	c.r.lock(LockCustomer, id)
	return c.CustomerRepository.GetForUpdate(ctx, id)
}

func (c customers) UpdateCreditBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	if err := c.r.failing(FailCreditBalance); err != nil {
		return err
	}
	return c.CustomerRepository.UpdateCreditBalance(ctx, id, balance)
}

type sales struct {
	repository.SaleRepository
	r *TxRunner
}

func (s sales) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	s.r.lock(LockDocument, "sale:"+id)
	return s.SaleRepository.GetForUpdate(ctx, id)
}

func (s sales) Create(ctx context.Context, sale *entity.Sale) error {
	if err := s.r.failing(FailSaleCreate); err != nil {
		return err
	}
	return s.SaleRepository.Create(ctx, sale)
}

type debts struct {
	repository.DebtRepository
	r *TxRunner
}

func (d debts) GetForUpdate(ctx context.Context, id string) (*entity.Debt, error) {
	d.r.lock(LockDebt, id)
	return d.DebtRepository.GetForUpdate(ctx, id)
}

func (d debts) ListActiveByCustomerForUpdate(ctx context.Context, customerID string) ([]*entity.Debt, error) {
	d.r.lock(LockDebt, "customer:"+customerID)
	return d.DebtRepository.ListActiveByCustomerForUpdate(ctx, customerID)
}

func (d debts) Create(ctx context.Context, debt *entity.Debt) error {
	if err := d.r.failing(FailDebtCreate); err != nil {
		return err
	}
	return d.DebtRepository.Create(ctx, debt)
}

func (d debts) CreatePayment(ctx context.Context, p *entity.DebtPayment) error {
	if err := d.r.failing(FailDebtPayment); err != nil {
		return err
	}
	return d.DebtRepository.CreatePayment(ctx, p)
}

type returns struct {
	repository.ReturnRepository
	r *TxRunner
}

func (rr returns) GetForUpdate(ctx context.Context, id string) (*entity.CustomerReturn, error) {
	rr.r.lock(LockDocument, "return:"+id)
	return rr.ReturnRepository.GetForUpdate(ctx, id)
}

func (rr returns) Create(ctx context.Context, ret *entity.CustomerReturn) error {
	if err := rr.r.failing(FailReturnCreate); err != nil {
		return err
	}
	return rr.ReturnRepository.Create(ctx, ret)
}

type purchases struct {
	repository.PurchaseRepository
	r *TxRunner
}

func (p purchases) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	p.r.lock(LockDocument, "purchase:"+id)
	return p.PurchaseRepository.GetForUpdate(ctx, id)
}
