package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Stock y costos no se tocan con Update: se manejan vía AddStock y UpdateCosts.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateCosts(ctx context.Context, productID string, averageCost, lastPurchaseCost decimal.Decimal) error
	// AddStock suma delta (con signo) al stock y devuelve el stock resultante.
	AddStock(ctx context.Context, productID string, delta decimal.Decimal) (decimal.Decimal, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	ListBelowMinStock(ctx context.Context) ([]*entity.Product, error)
}

// VariantRepository define el puerto de persistencia para ProductVariant.
type VariantRepository interface {
	Create(ctx context.Context, variant *entity.ProductVariant) error
	GetByID(ctx context.Context, id string) (*entity.ProductVariant, error)
	Update(ctx context.Context, variant *entity.ProductVariant) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.ProductVariant, error)
}
