package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// MutationInput datos de un movimiento. QtyBase lleva el signo que decide el caso de uso que llama.
type MutationInput struct {
	ProductID string
	VariantID string
	Type      entity.MutationType
	QtyBase   decimal.Decimal
	UnitCost  decimal.Decimal
	Reference string
	Notes     string
	UserID    string
	At        time.Time
}

// StockLedger escribe el kardex. Debe llamarse dentro de la transacción del caso de uso:
// suma QtyBase al stock del producto y registra el movimiento con la foto antes/después.
// No valida suficiencia; eso lo hace quien llama, con la fila ya bloqueada.
type StockLedger struct {
	metrics ports.Metrics
}

// NewStockLedger construye el escritor del kardex.
func NewStockLedger(metrics ports.Metrics) *StockLedger {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &StockLedger{metrics: metrics}
}

// Record aplica el movimiento y devuelve su ID.
func (l *StockLedger) Record(ctx context.Context, repos repository.Repos, in MutationInput) (string, error) {
	if !in.Type.Valid() {
		return "", domain.Invalid("type", "tipo de movimiento desconocido")
	}
	if in.ProductID == "" {
		return "", domain.Invalid("product_id", "requerido")
	}
	at := in.At
	if at.IsZero() {
		at = time.Now()
	}

	after, err := repos.Products.AddStock(ctx, in.ProductID, in.QtyBase)
	if err != nil {
		return "", fmt.Errorf("ledger %s: %w", in.Type, err)
	}
	m := &entity.StockMutation{
		ID:          uuid.New().String(),
		ProductID:   in.ProductID,
		VariantID:   in.VariantID,
		Type:        in.Type,
		QtyBaseUnit: in.QtyBase,
		StockBefore: after.Sub(in.QtyBase),
		StockAfter:  after,
		UnitCost:    in.UnitCost,
		Reference:   in.Reference,
		Notes:       in.Notes,
		UserID:      in.UserID,
		CreatedAt:   at,
	}
	if err := repos.Mutations.Create(ctx, m); err != nil {
		return "", fmt.Errorf("ledger %s: %w", in.Type, err)
	}
	return m.ID, nil
}

// Batch movimientos de una transacción. Se cuentan en métricas solo con Commit,
// después de que la transacción confirmó.
type Batch struct {
	ledger *StockLedger
	types  []entity.MutationType
}

// Batch abre un lote vacío. Crearlo fuera de TxRunner.Run.
func (l *StockLedger) Batch() *Batch {
	return &Batch{ledger: l}
}

// Record igual que StockLedger.Record, recordando el tipo.
func (b *Batch) Record(ctx context.Context, repos repository.Repos, in MutationInput) (string, error) {
	id, err := b.ledger.Record(ctx, repos, in)
	if err != nil {
		return "", err
	}
	b.types = append(b.types, in.Type)
	return id, nil
}

// Commit cuenta los movimientos registrados.
func (b *Batch) Commit() {
	for _, t := range b.types {
		b.ledger.metrics.StockMutation(string(t))
	}
	b.types = nil
}
