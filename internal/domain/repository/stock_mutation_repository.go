package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// MutationFilter filtros del kardex de un producto.
type MutationFilter struct {
	ProductID string
	VariantID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockMutationRepository puerto del libro de movimientos (solo inserción y lectura).
type StockMutationRepository interface {
	Create(ctx context.Context, m *entity.StockMutation) error
	// List devuelve los movimientos en orden de creación ascendente.
	List(ctx context.Context, filter MutationFilter) ([]*entity.StockMutation, error)
}
