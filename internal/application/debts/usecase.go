// Package debts expone el libro de deudas: abonos, saldar y consultas por cliente.
package debts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/debt"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// PaymentResult deuda actualizada y el abono registrado.
type PaymentResult struct {
	Debt    *entity.Debt
	Payment *entity.DebtPayment
}

// CustomerSummary deudas de un cliente con el total pendiente derivado.
type CustomerSummary struct {
	Customer  *entity.Customer
	Debts     []*entity.Debt
	TotalDebt decimal.Decimal
}

// UseCase casos de uso de deudas.
type UseCase struct {
	txRunner ports.TxRunner
	repos    repository.Repos
	metrics  ports.Metrics
	log      *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, repos repository.Repos, metrics ports.Metrics, log *logger.Logger) *UseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &UseCase{txRunner: txRunner, repos: repos, metrics: metrics, log: log}
}

// ApplyPayment registra un abono. Cuando la deuda queda en cero la venta pasa a completed.
func (uc *UseCase) ApplyPayment(ctx context.Context, actorUserID, debtID string, amount decimal.Decimal) (*PaymentResult, error) {
	return uc.pay(ctx, actorUserID, debtID, func(d *entity.Debt) decimal.Decimal { return amount })
}

// MarkPaid salda la deuda abonando el saldo pendiente.
func (uc *UseCase) MarkPaid(ctx context.Context, actorUserID, debtID string) (*PaymentResult, error) {
	return uc.pay(ctx, actorUserID, debtID, func(d *entity.Debt) decimal.Decimal { return d.RemainingAmount })
}

func (uc *UseCase) pay(ctx context.Context, actorUserID, debtID string, amountFor func(*entity.Debt) decimal.Decimal) (*PaymentResult, error) {
	now := time.Now()
	var out *PaymentResult
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		found, err := repos.Debts.GetByID(ctx, debtID)
		if err != nil {
			return err
		}
		if found == nil {
			return domain.ErrNotFound
		}
		// venta antes que deuda, mismo orden que las ventas con abono
		sale, err := repos.Sales.GetForUpdate(ctx, found.SaleID)
		if err != nil {
			return err
		}
		d, err := repos.Debts.GetForUpdate(ctx, debtID)
		if err != nil {
			return err
		}
		amount := amountFor(d)
		if err := debt.ApplyPayment(d, amount, now); err != nil {
			return err
		}
		if err := repos.Debts.Update(ctx, d); err != nil {
			return err
		}
		p := &entity.DebtPayment{
			ID:        uuid.New().String(),
			DebtID:    d.ID,
			Amount:    amount,
			UserID:    actorUserID,
			CreatedAt: now,
		}
		if err := repos.Debts.CreatePayment(ctx, p); err != nil {
			return err
		}
		if d.Status == entity.DebtStatusPaid {
			if sale != nil && sale.Status == entity.SaleStatusDebt {
				if err := repos.Sales.UpdateStatus(ctx, sale.ID, entity.SaleStatusCompleted, nil); err != nil {
					return err
				}
			}
		}
		out = &PaymentResult{Debt: d, Payment: p}
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("debt_id", debtID).Msg("abono rechazado")
		return nil, err
	}
	uc.metrics.DebtPayment(out.Payment.Amount)
	uc.log.Info().
		Str("debt_id", debtID).
		Str("amount", out.Payment.Amount.String()).
		Str("remaining", out.Debt.RemainingAmount.String()).
		Str("status", out.Debt.Status).
		Msg("abono registrado")
	return out, nil
}

// GetDebt deuda por ID.
func (uc *UseCase) GetDebt(ctx context.Context, id string) (*entity.Debt, error) {
	d, err := uc.repos.Debts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

// ListPayments abonos de una deuda, incluidas las reversas.
func (uc *UseCase) ListPayments(ctx context.Context, debtID string) ([]*entity.DebtPayment, error) {
	return uc.repos.Debts.ListPayments(ctx, debtID)
}

// CustomerDebtSummary deudas del cliente (todas o solo activas) y total pendiente.
func (uc *UseCase) CustomerDebtSummary(ctx context.Context, customerID string, onlyActive bool) (*CustomerSummary, error) {
	c, err := uc.repos.Customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.repos.Debts.ListByCustomer(ctx, customerID, onlyActive)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, d := range list {
		if d.IsActive {
			total = total.Add(d.RemainingAmount)
		}
	}
	return &CustomerSummary{Customer: c, Debts: list, TotalDebt: total}, nil
}
