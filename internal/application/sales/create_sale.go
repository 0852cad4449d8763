// Package sales orquesta la venta: validación de stock, totales, saldo a favor,
// fiado y abonos a deudas anteriores, todo en una transacción.
package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/debt"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/inventory"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// State estado de una venta en el orquestador.
type State string

const (
	StateBuilding   State = "building"
	StateValidating State = "validating"
	StateCommitted  State = "committed"
	StateRejected   State = "rejected"
)

// LineInput línea del carrito, qty en unidades de la variante.
type LineInput struct {
	ProductID string
	VariantID string
	Qty       decimal.Decimal
}

// CreateSaleInput carrito y pago. CustomerID vacío = cliente ocasional.
type CreateSaleInput struct {
	CustomerID       string
	Items            []LineInput
	TotalPaid        decimal.Decimal
	TotalBalanceUsed decimal.Decimal
	ShouldPayOldDebt bool
	IsDebt           bool
	Notes            string
}

// SaleResult venta confirmada con los totales calculados.
type SaleResult struct {
	State           State
	Sale            *entity.Sale
	Debt            *entity.Debt
	OldDebtPayments []*entity.DebtPayment
	Change          decimal.Decimal
}

// UseCase orquestador de ventas.
type UseCase struct {
	txRunner ports.TxRunner
	ledger   *appinventory.StockLedger
	numbers  ports.NumberGenerator
	prefix   string
	sales    repository.SaleRepository
	metrics  ports.Metrics
	log      *logger.Logger
}

// NewUseCase construye el orquestador. sales es el repositorio de lectura (fuera de tx).
func NewUseCase(
	txRunner ports.TxRunner,
	ledger *appinventory.StockLedger,
	numbers ports.NumberGenerator,
	invoicePrefix string,
	sales repository.SaleRepository,
	metrics ports.Metrics,
	log *logger.Logger,
) *UseCase {
	if invoicePrefix == "" {
		invoicePrefix = ports.PrefixInvoice
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &UseCase{
		txRunner: txRunner,
		ledger:   ledger,
		numbers:  numbers,
		prefix:   invoicePrefix,
		sales:    sales,
		metrics:  metrics,
		log:      log,
	}
}

func validateInput(in CreateSaleInput) error {
	v := domain.NewValidationError()
	if len(in.Items) == 0 {
		v.Add("items", "el carrito está vacío")
	}
	for i, it := range in.Items {
		if it.ProductID == "" {
			v.Add(fmt.Sprintf("items[%d].product_id", i), "requerido")
		}
		if it.VariantID == "" {
			v.Add(fmt.Sprintf("items[%d].variant_id", i), "requerido")
		}
		if !it.Qty.IsPositive() {
			v.Add(fmt.Sprintf("items[%d].qty", i), "debe ser mayor a cero")
		}
	}
	if in.TotalPaid.IsNegative() {
		v.Add("total_paid", "no puede ser negativo")
	}
	if in.TotalBalanceUsed.IsNegative() {
		v.Add("total_balance_used", "no puede ser negativo")
	}
	if in.CustomerID == "" {
		if in.IsDebt {
			v.Add("customer_id", "requerido para venta a crédito")
		}
		if in.ShouldPayOldDebt {
			v.Add("customer_id", "requerido para abonar deudas")
		}
		if in.TotalBalanceUsed.IsPositive() {
			v.Add("customer_id", "requerido para usar saldo a favor")
		}
	}
	return v.Err()
}

type pricedLine struct {
	in      LineInput
	variant *entity.ProductVariant
	base    decimal.Decimal
}

// CreateSale valida y confirma la venta.
//
// Dentro de la transacción (bloqueos en el orden cliente, ventas, deudas, productos):
//  1. bloquea cliente y deudas activas; luego productos (orden por ID) y compara qty x factor
//     contra stock, juntando todos los faltantes
//  2. subtotal con el precio vigente de la variante
//  3. saldo a favor acotado por el saldo del cliente y por el subtotal
//  4. pago: primero la venta, el resto a deudas anteriores (más antigua primero)
//  5. faltante de pago: rechazo, o deuda si IsDebt
//  6. escribe venta, líneas congeladas, movimientos, saldo, deuda y abonos
func (uc *UseCase) CreateSale(ctx context.Context, actorUserID string, in CreateSaleInput) (*SaleResult, error) {
	state := StateBuilding
	if err := validateInput(in); err != nil {
		uc.reject(state, "validation", err)
		return nil, err
	}
	now := time.Now()
	var (
		result *SaleResult
		batch  *appinventory.Batch
	)
	state = StateValidating
	err := ports.WithDocumentNumber(ctx, uc.numbers, uc.prefix, func(invoice string) error {
		result = &SaleResult{}
		batch = uc.ledger.Batch()
		return uc.txRunner.Run(ctx, func(repos repository.Repos) error {
			return uc.commitSale(ctx, repos, actorUserID, invoice, in, now, result, batch)
		})
	})
	if err != nil {
		uc.reject(state, "tx", err)
		return nil, err
	}
	batch.Commit()
	result.State = StateCommitted
	uc.metrics.SaleCommitted(result.Sale.TotalPrice)
	uc.log.Info().
		Str("invoice", result.Sale.InvoiceNumber).
		Str("user", actorUserID).
		Str("total", result.Sale.TotalPrice.String()).
		Str("status", result.Sale.Status).
		Msg("venta registrada")
	return result, nil
}

// commitSale cuerpo transaccional de CreateSale.
func (uc *UseCase) commitSale(ctx context.Context, repos repository.Repos, actorUserID, invoice string, in CreateSaleInput, now time.Time, result *SaleResult, batch *appinventory.Batch) error {
	var err error
	var customer *entity.Customer
	if in.CustomerID != "" {
		customer, err = repos.Customers.GetForUpdate(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrNotFound
		}
	}

	var oldDebts []*entity.Debt
	oldDebtTotal := decimal.Zero
	if in.ShouldPayOldDebt {
		oldDebts, err = lockActiveDebts(ctx, repos, in.CustomerID)
		if err != nil {
			return err
		}
		for _, d := range oldDebts {
			oldDebtTotal = oldDebtTotal.Add(d.RemainingAmount)
		}
	}

	lines := make([]pricedLine, 0, len(in.Items))
	ids := make([]string, 0, len(in.Items))
	for i, it := range in.Items {
		variant, err := repos.Variants.GetByID(ctx, it.VariantID)
		if err != nil {
			return err
		}
		if variant == nil || variant.ProductID != it.ProductID || !variant.IsActive {
			return domain.Invalid(fmt.Sprintf("items[%d].variant_id", i), "variante no encontrada para el producto")
		}
		lines = append(lines, pricedLine{in: it, variant: variant, base: inventory.ToBaseUnit(it.Qty, variant.ConversionToBase)})
		ids = append(ids, it.ProductID)
	}

	products, err := appinventory.LockProducts(ctx, repos, ids)
	if err != nil {
		return err
	}
	avail := appinventory.NewAvailability(products)
	for _, l := range lines {
		avail.Take(l.in.ProductID, l.variant.ID, l.variant.Name, l.base)
	}
	if err := avail.Err(); err != nil {
		return err
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.in.Qty.Mul(l.variant.SellPrice))
	}

	balanceUsed := in.TotalBalanceUsed
	if balanceUsed.IsPositive() {
		if balanceUsed.GreaterThan(customer.CreditBalance) {
			return &domain.BalanceExceededError{Requested: balanceUsed, Available: customer.CreditBalance}
		}
		if balanceUsed.GreaterThan(subtotal) {
			return &domain.BalanceExceededError{Requested: balanceUsed, Available: subtotal}
		}
	}
	grandTotal := subtotal.Sub(balanceUsed)

	required := grandTotal.Add(oldDebtTotal)
	if in.TotalPaid.LessThan(required) && !in.IsDebt {
		return &domain.InsufficientPaymentError{Required: required, Paid: in.TotalPaid}
	}

	paidForSale := decimal.Min(in.TotalPaid, grandTotal)
	leftover := in.TotalPaid.Sub(paidForSale)
	unpaid := grandTotal.Sub(paidForSale)
	oldPlan := planOldDebtPayments(oldDebts, leftover)
	oldPaid := decimal.Zero
	for _, p := range oldPlan {
		oldPaid = oldPaid.Add(p.amount)
	}
	change := in.TotalPaid.Sub(paidForSale).Sub(oldPaid)
	if change.IsNegative() {
		change = decimal.Zero
	}

	sale := &entity.Sale{
		ID:               uuid.New().String(),
		InvoiceNumber:    invoice,
		CustomerID:       in.CustomerID,
		Subtotal:         subtotal,
		TotalPrice:       grandTotal,
		TotalPaid:        in.TotalPaid,
		TotalReturn:      change,
		TotalBalanceUsed: balanceUsed,
		OldDebtPaid:      oldPaid,
		Status:           entity.SaleStatusCompleted,
		Notes:            in.Notes,
		UserID:           actorUserID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if unpaid.IsPositive() {
		sale.Status = entity.SaleStatusDebt
	}
	for _, l := range lines {
		p := products[l.in.ProductID]
		sale.Items = append(sale.Items, entity.SaleItem{
			ID:               uuid.New().String(),
			SaleID:           sale.ID,
			ProductID:        l.in.ProductID,
			VariantID:        l.variant.ID,
			VariantName:      l.variant.Name,
			Qty:              l.in.Qty,
			PriceAtSale:      l.variant.SellPrice,
			UnitFactorAtSale: l.variant.ConversionToBase,
			CostAtSale:       p.AverageCost.Mul(l.variant.ConversionToBase),
			Subtotal:         l.in.Qty.Mul(l.variant.SellPrice),
		})
	}
	if err := repos.Sales.Create(ctx, sale); err != nil {
		return err
	}

	for _, l := range lines {
		if _, err := batch.Record(ctx, repos, appinventory.MutationInput{
			ProductID: l.in.ProductID,
			VariantID: l.variant.ID,
			Type:      entity.MutationSale,
			QtyBase:   l.base.Neg(),
			UnitCost:  products[l.in.ProductID].AverageCost,
			Reference: invoice,
			UserID:    actorUserID,
			At:        now,
		}); err != nil {
			return err
		}
	}

	if balanceUsed.IsPositive() {
		if err := repos.Customers.UpdateCreditBalance(ctx, customer.ID, customer.CreditBalance.Sub(balanceUsed)); err != nil {
			return err
		}
	}

	if unpaid.IsPositive() {
		d := debt.New(uuid.New().String(), sale.ID, in.CustomerID, unpaid, now)
		if err := repos.Debts.Create(ctx, d); err != nil {
			return err
		}
		result.Debt = d
	}

	for _, p := range oldPlan {
		if err := debt.ApplyPayment(p.debt, p.amount, now); err != nil {
			return err
		}
		if err := repos.Debts.Update(ctx, p.debt); err != nil {
			return err
		}
		if p.debt.Status == entity.DebtStatusPaid {
			if err := settleSaleStatus(ctx, repos, p.debt.SaleID); err != nil {
				return err
			}
		}
		payment := &entity.DebtPayment{
			ID:        uuid.New().String(),
			DebtID:    p.debt.ID,
			SaleID:    sale.ID,
			Amount:    p.amount,
			UserID:    actorUserID,
			CreatedAt: now,
		}
		if err := repos.Debts.CreatePayment(ctx, payment); err != nil {
			return err
		}
		result.OldDebtPayments = append(result.OldDebtPayments, payment)
	}

	result.Sale = sale
	result.Change = change
	return nil
}

type oldDebtPayment struct {
	debt   *entity.Debt
	amount decimal.Decimal
}

// planOldDebtPayments reparte el sobrante entre deudas en el orden recibido (más antigua primero).
func planOldDebtPayments(debts []*entity.Debt, available decimal.Decimal) []oldDebtPayment {
	var plan []oldDebtPayment
	for _, d := range debts {
		if !available.IsPositive() {
			break
		}
		amount := decimal.Min(available, d.RemainingAmount)
		if !amount.IsPositive() {
			continue
		}
		plan = append(plan, oldDebtPayment{debt: d, amount: amount})
		available = available.Sub(amount)
	}
	return plan
}

// lockActiveDebts bloquea las ventas de las deudas activas y luego las deudas.
// El cliente ya está bloqueado, así que no aparecen deudas nuevas entre las dos lecturas.
func lockActiveDebts(ctx context.Context, repos repository.Repos, customerID string) ([]*entity.Debt, error) {
	pending, err := repos.Debts.ListByCustomer(ctx, customerID, true)
	if err != nil {
		return nil, err
	}
	for _, d := range pending {
		if _, err := repos.Sales.GetForUpdate(ctx, d.SaleID); err != nil {
			return nil, err
		}
	}
	return repos.Debts.ListActiveByCustomerForUpdate(ctx, customerID)
}

// settleSaleStatus pasa una venta fiada a completed cuando su deuda queda saldada.
// La venta ya está bloqueada por lockActiveDebts.
func settleSaleStatus(ctx context.Context, repos repository.Repos, saleID string) error {
	s, err := repos.Sales.GetByID(ctx, saleID)
	if err != nil {
		return err
	}
	if s != nil && s.Status == entity.SaleStatusDebt {
		return repos.Sales.UpdateStatus(ctx, saleID, entity.SaleStatusCompleted, nil)
	}
	return nil
}

func (uc *UseCase) reject(state State, stage string, err error) {
	reason := "persistence"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		reason = "validation"
	case errors.Is(err, domain.ErrInsufficientStock):
		reason = "insufficient_stock"
	case errors.Is(err, domain.ErrBalanceExceeded):
		reason = "balance_exceeded"
	case errors.Is(err, domain.ErrInsufficientPayment):
		reason = "insufficient_payment"
	case errors.Is(err, domain.ErrNotFound):
		reason = "not_found"
	}
	uc.metrics.SaleRejected(reason)
	ev := uc.log.Warn()
	if reason == "persistence" {
		ev = uc.log.Error()
	}
	ev.Err(err).Str("state", string(StateRejected)).Str("from", string(state)).Str("stage", stage).Str("reason", reason).Msg("venta rechazada")
}
