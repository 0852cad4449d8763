package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/debt"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// CancelSale anula una venta: reingresa el stock con el factor congelado, devuelve el saldo
// a favor usado, anula su deuda y revierte los abonos que hizo a deudas anteriores.
// No se puede anular una venta con devoluciones activas.
// Bloqueos: cliente, venta, ventas de las deudas abonadas, deudas, productos.
func (uc *UseCase) CancelSale(ctx context.Context, actorUserID, saleID, reason string) (*entity.Sale, error) {
	now := time.Now()
	var out *entity.Sale
	batch := uc.ledger.Batch()
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		found, err := repos.Sales.GetByID(ctx, saleID)
		if err != nil {
			return err
		}
		if found == nil {
			return domain.ErrNotFound
		}
		var customer *entity.Customer
		if found.CustomerID != "" {
			if customer, err = repos.Customers.GetForUpdate(ctx, found.CustomerID); err != nil {
				return err
			}
			if customer == nil {
				return domain.ErrNotFound
			}
		}

		sale, err := repos.Sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.CustomerID != found.CustomerID {
			return fmt.Errorf("la venta cambió de cliente: %w", domain.ErrConflict)
		}
		if sale.Status == entity.SaleStatusCancelled {
			return fmt.Errorf("venta ya anulada: %w", domain.ErrConflict)
		}
		n, err := repos.Returns.CountActiveBySale(ctx, sale.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("la venta tiene devoluciones activas: %w", domain.ErrConflict)
		}

		reversals, err := lockPaidDebts(ctx, repos, sale.ID)
		if err != nil {
			return err
		}
		own, err := repos.Debts.GetBySaleID(ctx, sale.ID)
		if err != nil {
			return err
		}
		if own != nil {
			if own, err = repos.Debts.GetForUpdate(ctx, own.ID); err != nil {
				return err
			}
		}

		ids := make([]string, 0, len(sale.Items))
		for _, it := range sale.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := appinventory.LockProducts(ctx, repos, ids)
		if err != nil {
			return err
		}
		for _, it := range sale.Items {
			if _, err := batch.Record(ctx, repos, appinventory.MutationInput{
				ProductID: it.ProductID,
				VariantID: it.VariantID,
				Type:      entity.MutationSaleCancel,
				QtyBase:   it.Qty.Mul(it.UnitFactorAtSale),
				UnitCost:  products[it.ProductID].AverageCost,
				Reference: sale.InvoiceNumber,
				Notes:     reason,
				UserID:    actorUserID,
				At:        now,
			}); err != nil {
				return err
			}
		}

		if customer != nil && sale.TotalBalanceUsed.IsPositive() {
			if err := repos.Customers.UpdateCreditBalance(ctx, customer.ID, customer.CreditBalance.Add(sale.TotalBalanceUsed)); err != nil {
				return err
			}
		}

		if own != nil && own.Status != entity.DebtStatusCancelled {
			debt.Cancel(own, now)
			if err := repos.Debts.Update(ctx, own); err != nil {
				return err
			}
		}

		if err := revertOldDebtPayments(ctx, repos, reversals, sale.ID, actorUserID, now); err != nil {
			return err
		}

		if err := repos.Sales.UpdateStatus(ctx, sale.ID, entity.SaleStatusCancelled, &now); err != nil {
			return err
		}
		sale.Status = entity.SaleStatusCancelled
		sale.CancelledAt = &now
		sale.UpdatedAt = now
		out = sale
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("sale_id", saleID).Msg("anulación de venta rechazada")
		return nil, err
	}
	batch.Commit()
	uc.metrics.SaleCancelled()
	uc.log.Info().Str("invoice", out.InvoiceNumber).Str("user", actorUserID).Msg("venta anulada")
	return out, nil
}

type debtReversal struct {
	debt   *entity.Debt
	amount decimal.Decimal
}

// lockPaidDebts suma por deuda los abonos hechos desde la venta. Bloquea primero las ventas
// de esas deudas y después las deudas.
func lockPaidDebts(ctx context.Context, repos repository.Repos, saleID string) ([]debtReversal, error) {
	payments, err := repos.Debts.ListPaymentsBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	net := map[string]decimal.Decimal{}
	var order []string
	for _, p := range payments {
		if _, ok := net[p.DebtID]; !ok {
			order = append(order, p.DebtID)
		}
		net[p.DebtID] = net[p.DebtID].Add(p.Amount)
	}

	var pending []string
	for _, debtID := range order {
		if !net[debtID].IsPositive() {
			continue
		}
		d, err := repos.Debts.GetByID(ctx, debtID)
		if err != nil {
			return nil, err
		}
		if d == nil {
			continue
		}
		if _, err := repos.Sales.GetForUpdate(ctx, d.SaleID); err != nil {
			return nil, err
		}
		pending = append(pending, debtID)
	}

	out := make([]debtReversal, 0, len(pending))
	for _, debtID := range pending {
		d, err := repos.Debts.GetForUpdate(ctx, debtID)
		if err != nil {
			return nil, err
		}
		if d == nil || d.Status == entity.DebtStatusCancelled {
			continue
		}
		out = append(out, debtReversal{debt: d, amount: net[debtID]})
	}
	return out, nil
}

// revertOldDebtPayments registra la reversa de cada abono y devuelve la venta original a fiado.
func revertOldDebtPayments(ctx context.Context, repos repository.Repos, reversals []debtReversal, saleID, actorUserID string, now time.Time) error {
	for _, r := range reversals {
		d := r.debt
		wasPaid := d.Status == entity.DebtStatusPaid
		debt.RevertPayment(d, r.amount, now)
		if err := repos.Debts.Update(ctx, d); err != nil {
			return err
		}
		if wasPaid && d.IsActive {
			orig, err := repos.Sales.GetByID(ctx, d.SaleID)
			if err != nil {
				return err
			}
			if orig != nil && orig.Status == entity.SaleStatusCompleted {
				if err := repos.Sales.UpdateStatus(ctx, orig.ID, entity.SaleStatusDebt, nil); err != nil {
					return err
				}
			}
		}
		if err := repos.Debts.CreatePayment(ctx, &entity.DebtPayment{
			ID:        uuid.New().String(),
			DebtID:    d.ID,
			SaleID:    saleID,
			Amount:    r.amount.Neg(),
			UserID:    actorUserID,
			CreatedAt: now,
		}); err != nil {
			return err
		}
	}
	return nil
}
