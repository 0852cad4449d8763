package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// ReturnRepository persiste devoluciones con sus líneas devueltas y de cambio.
type ReturnRepository interface {
	Create(ctx context.Context, ret *entity.CustomerReturn) error
	GetByID(ctx context.Context, id string) (*entity.CustomerReturn, error)
	GetForUpdate(ctx context.Context, id string) (*entity.CustomerReturn, error)
	ListBySale(ctx context.Context, saleID string) ([]*entity.CustomerReturn, error)
	// ReturnedQtyBySaleItem suma lo devuelto por línea de venta en devoluciones no anuladas.
	ReturnedQtyBySaleItem(ctx context.Context, saleID string) (map[string]decimal.Decimal, error)
	CountActiveBySale(ctx context.Context, saleID string) (int, error)
	MarkCancelled(ctx context.Context, id, userID string, at time.Time) error
}
