package returns

import (
	"context"
	"fmt"
	"time"

	appinventory "github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/inventory"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// CancelReturn revierte una devolución: saca de nuevo lo reingresado (return_cancel),
// devuelve al inventario lo entregado en cambio (exchange_cancel) y descuenta el saldo
// abonado. No tiene deshacer. Bloqueos: cliente, devolución, venta, productos.
func (uc *UseCase) CancelReturn(ctx context.Context, actorUserID, returnID string) (*entity.CustomerReturn, error) {
	now := time.Now()
	var out *entity.CustomerReturn
	batch := uc.ledger.Batch()
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		found, err := repos.Returns.GetByID(ctx, returnID)
		if err != nil {
			return err
		}
		if found == nil {
			return domain.ErrNotFound
		}
		var customer *entity.Customer
		if found.CreditAdded.IsPositive() {
			if customer, err = repos.Customers.GetForUpdate(ctx, found.CustomerID); err != nil {
				return err
			}
			if customer == nil {
				return domain.ErrNotFound
			}
		}
		ret, err := repos.Returns.GetForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if ret == nil {
			return domain.ErrNotFound
		}
		if ret.Status == entity.ReturnStatusCancelled {
			return fmt.Errorf("devolución ya anulada: %w", domain.ErrConflict)
		}
		sale, err := repos.Sales.GetForUpdate(ctx, ret.SaleID)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(ret.Items)+len(ret.ExchangeItems))
		for _, it := range ret.Items {
			ids = append(ids, it.ProductID)
		}
		for _, x := range ret.ExchangeItems {
			ids = append(ids, x.ProductID)
		}
		products, err := appinventory.LockProducts(ctx, repos, ids)
		if err != nil {
			return err
		}
		avail := appinventory.NewAvailability(products)
		for _, x := range ret.ExchangeItems {
			avail.Add(x.ProductID, inventory.ToBaseUnit(x.Qty, x.UnitFactorAtExchange))
		}
		for _, it := range ret.Items {
			if it.ReturnedToStock {
				avail.Take(it.ProductID, it.VariantID, "", inventory.ToBaseUnit(it.Qty, it.UnitFactorAtReturn))
			}
		}
		if err := avail.Err(); err != nil {
			return err
		}

		if customer != nil {
			if customer.CreditBalance.LessThan(ret.CreditAdded) {
				return &domain.BalanceExceededError{Requested: ret.CreditAdded, Available: customer.CreditBalance}
			}
		}

		for _, x := range ret.ExchangeItems {
			if _, err := batch.Record(ctx, repos, appinventory.MutationInput{
				ProductID: x.ProductID,
				VariantID: x.VariantID,
				Type:      entity.MutationExchangeCancel,
				QtyBase:   inventory.ToBaseUnit(x.Qty, x.UnitFactorAtExchange),
				UnitCost:  products[x.ProductID].AverageCost,
				Reference: ret.ReturnNumber,
				UserID:    actorUserID,
				At:        now,
			}); err != nil {
				return err
			}
		}
		for _, it := range ret.Items {
			if !it.ReturnedToStock {
				continue
			}
			if _, err := batch.Record(ctx, repos, appinventory.MutationInput{
				ProductID: it.ProductID,
				VariantID: it.VariantID,
				Type:      entity.MutationReturnCancel,
				QtyBase:   inventory.ToBaseUnit(it.Qty, it.UnitFactorAtReturn).Neg(),
				UnitCost:  products[it.ProductID].AverageCost,
				Reference: ret.ReturnNumber,
				UserID:    actorUserID,
				At:        now,
			}); err != nil {
				return err
			}
		}
		if customer != nil {
			if err := repos.Customers.UpdateCreditBalance(ctx, customer.ID, customer.CreditBalance.Sub(ret.CreditAdded)); err != nil {
				return err
			}
		}

		if sale != nil && sale.Status == entity.SaleStatusRefunded {
			if err := repos.Sales.UpdateStatus(ctx, sale.ID, entity.SaleStatusCompleted, nil); err != nil {
				return err
			}
		}

		if err := repos.Returns.MarkCancelled(ctx, ret.ID, actorUserID, now); err != nil {
			return err
		}
		ret.Status = entity.ReturnStatusCancelled
		ret.CancelledAt = &now
		ret.CancelledBy = actorUserID
		out = ret
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("return_id", returnID).Msg("anulación de devolución rechazada")
		return nil, err
	}
	batch.Commit()
	uc.metrics.ReturnCancelled()
	uc.log.Info().Str("return", out.ReturnNumber).Str("user", actorUserID).Msg("devolución anulada")
	return out, nil
}
