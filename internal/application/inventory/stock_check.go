package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// LockProducts bloquea (SELECT FOR UPDATE) los productos en orden de ID.
//
// Orden de bloqueo de todos los orquestadores: cliente, documento (devolución, venta, compra;
// después las ventas cuyas deudas se abonan), deudas, productos. Productos siempre al final.
func LockProducts(ctx context.Context, repos repository.Repos, ids []string) (map[string]*entity.Product, error) {
	uniq := make(map[string]struct{}, len(ids))
	sorted := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := uniq[id]; ok {
			continue
		}
		uniq[id] = struct{}{}
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	out := make(map[string]*entity.Product, len(sorted))
	for _, id := range sorted {
		p, err := repos.Products.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
		out[id] = p
	}
	return out, nil
}

// Availability acumula consumos por producto sobre el stock bloqueado y junta los faltantes.
// Varias líneas del mismo producto consumen del mismo saldo.
type Availability struct {
	remaining  map[string]decimal.Decimal
	shortfalls []domain.StockShortfall
}

// NewAvailability parte del stock actual de los productos bloqueados.
func NewAvailability(products map[string]*entity.Product) *Availability {
	rem := make(map[string]decimal.Decimal, len(products))
	for id, p := range products {
		rem[id] = p.Stock
	}
	return &Availability{remaining: rem}
}

// Add suma una entrada que ocurre en la misma transacción (ej. reingreso de una devolución).
func (a *Availability) Add(productID string, qtyBase decimal.Decimal) {
	a.remaining[productID] = a.remaining[productID].Add(qtyBase)
}

// Take consume qtyBase; si no alcanza registra el faltante y no descuenta.
func (a *Availability) Take(productID, variantID, variantName string, qtyBase decimal.Decimal) bool {
	avail := a.remaining[productID]
	if qtyBase.GreaterThan(avail) {
		a.shortfalls = append(a.shortfalls, domain.StockShortfall{
			ProductID:   productID,
			VariantID:   variantID,
			VariantName: variantName,
			Requested:   qtyBase,
			Available:   avail,
			Shortfall:   qtyBase.Sub(avail),
		})
		return false
	}
	a.remaining[productID] = avail.Sub(qtyBase)
	return true
}

// Err devuelve InsufficientStockError con todas las líneas faltantes, o nil.
func (a *Availability) Err() error {
	if len(a.shortfalls) == 0 {
		return nil
	}
	return &domain.InsufficientStockError{Lines: a.shortfalls}
}
