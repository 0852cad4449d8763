// Package memory implementa los repositorios en memoria. Se usa en tests de casos de uso
// y para levantar la API sin PostgreSQL (APP_ENV=demo).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	products  map[string]entity.Product
	variants  map[string]entity.ProductVariant
	mutations []entity.StockMutation
	customers map[string]entity.Customer
	sales     map[string]entity.Sale
	debts     map[string]entity.Debt
	debtOrder []string
	payments  []entity.DebtPayment
	returns   map[string]entity.CustomerReturn
	purchases map[string]entity.Purchase
	users     map[string]entity.User
}

func newState() *state {
	return &state{
		products:  map[string]entity.Product{},
		variants:  map[string]entity.ProductVariant{},
		customers: map[string]entity.Customer{},
		sales:     map[string]entity.Sale{},
		debts:     map[string]entity.Debt{},
		returns:   map[string]entity.CustomerReturn{},
		purchases: map[string]entity.Purchase{},
		users:     map[string]entity.User{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.variants {
		c.variants[k] = v
	}
	c.mutations = append([]entity.StockMutation(nil), s.mutations...)
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = copySale(v)
	}
	for k, v := range s.debts {
		c.debts[k] = v
	}
	c.debtOrder = append([]string(nil), s.debtOrder...)
	c.payments = append([]entity.DebtPayment(nil), s.payments...)
	for k, v := range s.returns {
		c.returns[k] = copyReturn(v)
	}
	for k, v := range s.purchases {
		c.purchases[k] = copyPurchase(v)
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

func copySale(s entity.Sale) entity.Sale {
	s.Items = append([]entity.SaleItem(nil), s.Items...)
	return s
}

func copyReturn(r entity.CustomerReturn) entity.CustomerReturn {
	r.Items = append([]entity.CustomerReturnItem(nil), r.Items...)
	r.ExchangeItems = append([]entity.CustomerExchangeItem(nil), r.ExchangeItems...)
	return r
}

func copyPurchase(p entity.Purchase) entity.Purchase {
	p.Items = append([]entity.PurchaseItem(nil), p.Items...)
	return p
}

// Store guarda el estado y serializa transacciones: Run toma txMu, guarda una copia
// del estado y la restaura si fn falla. Las escrituras fuera de Run también toman txMu,
// así un rollback nunca pisa datos confirmados. Las lecturas fuera de Run ven el estado en curso.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	st   *state
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState()}
}

// conn es la vista que usan los repositorios. Dentro de Run (inTx) txMu ya está tomado.
type conn struct {
	store *Store
	inTx  bool
}

func (c *conn) read(fn func(st *state)) { c.store.read(fn) }

func (c *conn) write(fn func(st *state) error) error {
	if !c.inTx {
		c.store.txMu.Lock()
		defer c.store.txMu.Unlock()
	}
	return c.store.write(fn)
}

func reposOn(c *conn) repository.Repos {
	return repository.Repos{
		Products:  &ProductRepo{s: c},
		Variants:  &VariantRepo{s: c},
		Mutations: &MutationRepo{s: c},
		Customers: &CustomerRepo{s: c},
		Sales:     &SaleRepo{s: c},
		Debts:     &DebtRepo{s: c},
		Returns:   &ReturnRepo{s: c},
		Purchases: &PurchaseRepo{s: c},
	}
}

// Repos devuelve los repositorios sobre el store. No usarlos para escribir dentro de un
// callback de Run: ahí van los repos que recibe fn.
func (s *Store) Repos() repository.Repos {
	return reposOn(&conn{store: s})
}

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo {
	return &UserRepo{s: &conn{store: s}}
}

// Run ejecuta fn de forma atómica respecto a otras llamadas a Run.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(reposOn(&conn{store: s, inTx: true})); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.st)
}

func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
