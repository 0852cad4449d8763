// Package debt contiene las reglas del libro de deudas (abonos y estados).
package debt

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// New crea una deuda activa sin abonos.
func New(id, saleID, customerID string, amount decimal.Decimal, now time.Time) *entity.Debt {
	return &entity.Debt{
		ID:              id,
		SaleID:          saleID,
		CustomerID:      customerID,
		OriginalAmount:  amount,
		RemainingAmount: amount,
		Status:          entity.DebtStatusUnpaid,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// StatusFor deriva el estado a partir del saldo: unpaid si no hay abonos, paid en cero, partial en medio.
func StatusFor(original, remaining decimal.Decimal) string {
	switch {
	case !remaining.IsPositive():
		return entity.DebtStatusPaid
	case remaining.GreaterThanOrEqual(original):
		return entity.DebtStatusUnpaid
	default:
		return entity.DebtStatusPartial
	}
}

// ApplyPayment descuenta un abono. Rechaza montos no positivos y abonos mayores al saldo.
func ApplyPayment(d *entity.Debt, amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return domain.Invalid("amount", "debe ser mayor a cero")
	}
	if d.Status == entity.DebtStatusCancelled {
		return domain.ErrConflict
	}
	if amount.GreaterThan(d.RemainingAmount) {
		return &domain.PaymentExceedsDebtError{Amount: amount, Remaining: d.RemainingAmount}
	}
	d.RemainingAmount = d.RemainingAmount.Sub(amount)
	d.Status = StatusFor(d.OriginalAmount, d.RemainingAmount)
	d.UpdatedAt = now
	if d.Status == entity.DebtStatusPaid {
		d.IsActive = false
		d.PaidAt = &now
	}
	return nil
}

// RevertPayment devuelve un abono al saldo (anulación de la venta que lo pagó).
func RevertPayment(d *entity.Debt, amount decimal.Decimal, now time.Time) {
	d.RemainingAmount = d.RemainingAmount.Add(amount)
	if d.RemainingAmount.GreaterThan(d.OriginalAmount) {
		d.RemainingAmount = d.OriginalAmount
	}
	d.Status = StatusFor(d.OriginalAmount, d.RemainingAmount)
	d.IsActive = d.Status != entity.DebtStatusPaid
	if d.IsActive {
		d.PaidAt = nil
	}
	d.UpdatedAt = now
}

// Cancel anula la deuda de una venta anulada.
func Cancel(d *entity.Debt, now time.Time) {
	d.Status = entity.DebtStatusCancelled
	d.IsActive = false
	d.UpdatedAt = now
}

// Outstanding indica si la deuda bloquea devoluciones (activa y con saldo).
func Outstanding(d *entity.Debt) bool {
	if d == nil || !d.IsActive {
		return false
	}
	return d.Status == entity.DebtStatusUnpaid || d.Status == entity.DebtStatusPartial
}
