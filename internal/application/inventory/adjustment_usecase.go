package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/inventory"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// AdjustStockInput ajuste manual. Qty con signo en unidades de la variante.
// UnitCost (por unidad de variante) solo aplica a ajustes positivos y recalcula el costo promedio.
type AdjustStockInput struct {
	ProductID string
	VariantID string
	Qty       decimal.Decimal
	UnitCost  *decimal.Decimal
	Notes     string
}

// SupplierReturnInput devolución de mercancía al proveedor.
type SupplierReturnInput struct {
	ProductID string
	VariantID string
	Qty       decimal.Decimal
	Reference string
	Notes     string
}

// AdjustmentUseCase ajustes de inventario y devoluciones a proveedor, con bloqueo de fila.
type AdjustmentUseCase struct {
	txRunner  ports.TxRunner
	ledger    *StockLedger
	mutations repository.StockMutationRepository
	log       *logger.Logger
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(txRunner ports.TxRunner, ledger *StockLedger, mutations repository.StockMutationRepository, log *logger.Logger) *AdjustmentUseCase {
	return &AdjustmentUseCase{txRunner: txRunner, ledger: ledger, mutations: mutations, log: log}
}

// AdjustStock aplica un ajuste. Positivo con costo recalcula promedio; negativo valida stock.
func (uc *AdjustmentUseCase) AdjustStock(ctx context.Context, actorUserID string, in AdjustStockInput) (*entity.StockMutation, error) {
	v := domain.NewValidationError()
	if in.ProductID == "" {
		v.Add("product_id", "requerido")
	}
	if in.Qty.IsZero() {
		v.Add("qty", "no puede ser cero")
	}
	if in.UnitCost != nil && (in.UnitCost.IsNegative() || in.Qty.IsNegative()) {
		v.Add("unit_cost", "solo para ajustes positivos y no negativo")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	var out *entity.StockMutation
	batch := uc.ledger.Batch()
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		factor, variant, err := resolveFactor(ctx, repos, in.ProductID, in.VariantID)
		if err != nil {
			return err
		}
		products, err := LockProducts(ctx, repos, []string{in.ProductID})
		if err != nil {
			return err
		}
		product := products[in.ProductID]
		base := inventory.ToBaseUnit(in.Qty, factor)
		unitCost := product.AverageCost

		if base.IsNegative() {
			avail := NewAvailability(products)
			avail.Take(product.ID, in.VariantID, variantName(variant), base.Neg())
			if err := avail.Err(); err != nil {
				return err
			}
		} else if in.UnitCost != nil {
			unitCost = inventory.CostPerBaseUnit(*in.UnitCost, factor)
			newAvg := inventory.RecomputeAverageCost(product.AverageCost, product.Stock, base, unitCost)
			if err := repos.Products.UpdateCosts(ctx, product.ID, newAvg, product.LastPurchaseCost); err != nil {
				return err
			}
		}

		now := time.Now()
		id, err := batch.Record(ctx, repos, MutationInput{
			ProductID: product.ID,
			VariantID: in.VariantID,
			Type:      entity.MutationAdjustment,
			QtyBase:   base,
			UnitCost:  unitCost,
			Notes:     in.Notes,
			UserID:    actorUserID,
			At:        now,
		})
		if err != nil {
			return err
		}
		out = &entity.StockMutation{
			ID: id, ProductID: product.ID, VariantID: in.VariantID, Type: entity.MutationAdjustment,
			QtyBaseUnit: base, StockBefore: product.Stock, StockAfter: product.Stock.Add(base),
			UnitCost: unitCost, Notes: in.Notes, UserID: actorUserID, CreatedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	batch.Commit()
	uc.log.Info().Str("product", in.ProductID).Str("qty_base", out.QtyBaseUnit.String()).Str("user", actorUserID).Msg("ajuste de inventario")
	return out, nil
}

// ReturnToSupplier saca mercancía hacia el proveedor (supplier_return). No toca el costo promedio.
func (uc *AdjustmentUseCase) ReturnToSupplier(ctx context.Context, actorUserID string, in SupplierReturnInput) (*entity.StockMutation, error) {
	if in.ProductID == "" || !in.Qty.IsPositive() {
		v := domain.NewValidationError()
		if in.ProductID == "" {
			v.Add("product_id", "requerido")
		}
		if !in.Qty.IsPositive() {
			v.Add("qty", "debe ser mayor a cero")
		}
		return nil, v
	}
	var out *entity.StockMutation
	batch := uc.ledger.Batch()
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		factor, variant, err := resolveFactor(ctx, repos, in.ProductID, in.VariantID)
		if err != nil {
			return err
		}
		products, err := LockProducts(ctx, repos, []string{in.ProductID})
		if err != nil {
			return err
		}
		product := products[in.ProductID]
		base := inventory.ToBaseUnit(in.Qty, factor)
		avail := NewAvailability(products)
		avail.Take(product.ID, in.VariantID, variantName(variant), base)
		if err := avail.Err(); err != nil {
			return err
		}
		now := time.Now()
		id, err := batch.Record(ctx, repos, MutationInput{
			ProductID: product.ID,
			VariantID: in.VariantID,
			Type:      entity.MutationSupplierReturn,
			QtyBase:   base.Neg(),
			UnitCost:  product.AverageCost,
			Reference: in.Reference,
			Notes:     in.Notes,
			UserID:    actorUserID,
			At:        now,
		})
		if err != nil {
			return err
		}
		out = &entity.StockMutation{
			ID: id, ProductID: product.ID, VariantID: in.VariantID, Type: entity.MutationSupplierReturn,
			QtyBaseUnit: base.Neg(), StockBefore: product.Stock, StockAfter: product.Stock.Sub(base),
			UnitCost: product.AverageCost, Reference: in.Reference, Notes: in.Notes, UserID: actorUserID, CreatedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	batch.Commit()
	return out, nil
}

// ListMutations kardex de un producto en orden de creación.
func (uc *AdjustmentUseCase) ListMutations(ctx context.Context, filter repository.MutationFilter) ([]*entity.StockMutation, error) {
	if filter.ProductID == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return uc.mutations.List(ctx, filter)
}

func variantName(v *entity.ProductVariant) string {
	if v == nil {
		return ""
	}
	return v.Name
}
