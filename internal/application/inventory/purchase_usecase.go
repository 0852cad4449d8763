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
	"github.com/jhoicas/pos-api/internal/domain/inventory"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// PurchaseLineInput línea de compra en unidades de la variante. VariantID vacío = unidad base.
type PurchaseLineInput struct {
	ProductID string
	VariantID string
	Qty       decimal.Decimal
	UnitCost  decimal.Decimal
}

// ReceivePurchaseInput entrada para recibir mercancía.
type ReceivePurchaseInput struct {
	SupplierName string
	Notes        string
	Items        []PurchaseLineInput
}

// PurchaseUseCase recibe y anula compras. Cada recepción recalcula el costo promedio.
type PurchaseUseCase struct {
	txRunner  ports.TxRunner
	ledger    *StockLedger
	numbers   ports.NumberGenerator
	prefix    string
	purchases repository.PurchaseRepository
	log       *logger.Logger
}

// NewPurchaseUseCase construye el caso de uso.
func NewPurchaseUseCase(
	txRunner ports.TxRunner,
	ledger *StockLedger,
	numbers ports.NumberGenerator,
	prefix string,
	purchases repository.PurchaseRepository,
	log *logger.Logger,
) *PurchaseUseCase {
	if prefix == "" {
		prefix = ports.PrefixPurchase
	}
	return &PurchaseUseCase{txRunner: txRunner, ledger: ledger, numbers: numbers, prefix: prefix, purchases: purchases, log: log}
}

func validatePurchase(in ReceivePurchaseInput) error {
	v := domain.NewValidationError()
	if len(in.Items) == 0 {
		v.Add("items", "al menos una línea")
	}
	for i, it := range in.Items {
		if it.ProductID == "" {
			v.Add(fmt.Sprintf("items[%d].product_id", i), "requerido")
		}
		if !it.Qty.IsPositive() {
			v.Add(fmt.Sprintf("items[%d].qty", i), "debe ser mayor a cero")
		}
		if it.UnitCost.IsNegative() {
			v.Add(fmt.Sprintf("items[%d].unit_cost", i), "no puede ser negativo")
		}
	}
	return v.Err()
}

// resolveFactor devuelve el factor de la variante (1 si no hay variante) validando que sea del producto.
func resolveFactor(ctx context.Context, repos repository.Repos, productID, variantID string) (decimal.Decimal, *entity.ProductVariant, error) {
	if variantID == "" {
		return decimal.NewFromInt(1), nil, nil
	}
	v, err := repos.Variants.GetByID(ctx, variantID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	if v == nil || v.ProductID != productID {
		return decimal.Zero, nil, domain.ErrNotFound
	}
	return v.ConversionToBase, v, nil
}

// ReceivePurchase registra la compra: por línea convierte a unidad base, recalcula el costo promedio
// con el costo por unidad base, sobrescribe el último costo de compra y escribe un movimiento purchase.
func (uc *PurchaseUseCase) ReceivePurchase(ctx context.Context, actorUserID string, in ReceivePurchaseInput) (*entity.Purchase, error) {
	if err := validatePurchase(in); err != nil {
		return nil, err
	}
	now := time.Now()
	var (
		purchase *entity.Purchase
		batch    *Batch
	)
	err := ports.WithDocumentNumber(ctx, uc.numbers, uc.prefix, func(reference string) error {
		purchase = &entity.Purchase{
			ID:           uuid.New().String(),
			Reference:    reference,
			SupplierName: in.SupplierName,
			Status:       entity.PurchaseStatusReceived,
			Notes:        in.Notes,
			UserID:       actorUserID,
			CreatedAt:    now,
		}
		batch = uc.ledger.Batch()
		return uc.txRunner.Run(ctx, func(repos repository.Repos) error {
			ids := make([]string, 0, len(in.Items))
			for _, it := range in.Items {
				ids = append(ids, it.ProductID)
			}
			if _, err := LockProducts(ctx, repos, ids); err != nil {
				return err
			}

			total := decimal.Zero
			purchase.Items = purchase.Items[:0]
			for _, it := range in.Items {
				factor, _, err := resolveFactor(ctx, repos, it.ProductID, it.VariantID)
				if err != nil {
					return err
				}
				// Releer: otra línea del mismo producto ya pudo cambiar stock y costo.
				product, err := repos.Products.GetForUpdate(ctx, it.ProductID)
				if err != nil {
					return err
				}
				baseQty := inventory.ToBaseUnit(it.Qty, factor)
				baseCost := inventory.CostPerBaseUnit(it.UnitCost, factor)
				newAvg := inventory.RecomputeAverageCost(product.AverageCost, product.Stock, baseQty, baseCost)
				if err := repos.Products.UpdateCosts(ctx, product.ID, newAvg, baseCost); err != nil {
					return err
				}
				if _, err := batch.Record(ctx, repos, MutationInput{
					ProductID: product.ID,
					VariantID: it.VariantID,
					Type:      entity.MutationPurchase,
					QtyBase:   baseQty,
					UnitCost:  baseCost,
					Reference: reference,
					Notes:     in.SupplierName,
					UserID:    actorUserID,
					At:        now,
				}); err != nil {
					return err
				}
				subtotal := it.Qty.Mul(it.UnitCost)
				total = total.Add(subtotal)
				purchase.Items = append(purchase.Items, entity.PurchaseItem{
					ID:         uuid.New().String(),
					PurchaseID: purchase.ID,
					ProductID:  it.ProductID,
					VariantID:  it.VariantID,
					Qty:        it.Qty,
					UnitCost:   it.UnitCost,
					UnitFactor: factor,
					Subtotal:   subtotal,
				})
			}
			purchase.Total = total
			return repos.Purchases.Create(ctx, purchase)
		})
	})
	if err != nil {
		return nil, err
	}
	batch.Commit()
	uc.log.Info().Str("purchase", purchase.Reference).Str("user", actorUserID).Str("total", purchase.Total.String()).Msg("compra recibida")
	return purchase, nil
}

// CancelPurchase revierte el stock de una compra (purchase_cancel). El costo promedio no se recalcula.
// Falla con InsufficientStock si parte de la mercancía ya salió.
func (uc *PurchaseUseCase) CancelPurchase(ctx context.Context, actorUserID, purchaseID string) (*entity.Purchase, error) {
	var out *entity.Purchase
	batch := uc.ledger.Batch()
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		p, err := repos.Purchases.GetForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if p.Status != entity.PurchaseStatusReceived {
			return domain.ErrConflict
		}
		ids := make([]string, 0, len(p.Items))
		for _, it := range p.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := LockProducts(ctx, repos, ids)
		if err != nil {
			return err
		}
		avail := NewAvailability(products)
		for _, it := range p.Items {
			avail.Take(it.ProductID, it.VariantID, "", inventory.ToBaseUnit(it.Qty, it.UnitFactor))
		}
		if err := avail.Err(); err != nil {
			return err
		}
		now := time.Now()
		for _, it := range p.Items {
			base := inventory.ToBaseUnit(it.Qty, it.UnitFactor)
			if _, err := batch.Record(ctx, repos, MutationInput{
				ProductID: it.ProductID,
				VariantID: it.VariantID,
				Type:      entity.MutationPurchaseCancel,
				QtyBase:   base.Neg(),
				UnitCost:  inventory.CostPerBaseUnit(it.UnitCost, it.UnitFactor),
				Reference: p.Reference,
				UserID:    actorUserID,
				At:        now,
			}); err != nil {
				return err
			}
		}
		if err := repos.Purchases.MarkCancelled(ctx, p.ID, now); err != nil {
			return err
		}
		p.Status = entity.PurchaseStatusCancelled
		p.CancelledAt = &now
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	batch.Commit()
	uc.log.Info().Str("purchase", out.Reference).Str("user", actorUserID).Msg("compra anulada")
	return out, nil
}

// GetPurchase devuelve la compra con sus líneas.
func (uc *PurchaseUseCase) GetPurchase(ctx context.Context, id string) (*entity.Purchase, error) {
	p, err := uc.purchases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// ListPurchases lista compras recientes.
func (uc *PurchaseUseCase) ListPurchases(ctx context.Context, limit, offset int) ([]*entity.Purchase, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.purchases.List(ctx, limit, offset)
}
