package returns

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
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/inventory"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// ReturnLineInput cantidad devuelta de una línea de la venta (unidades de la variante vendida).
type ReturnLineInput struct {
	SaleItemID      string
	Qty             decimal.Decimal
	ReturnedToStock bool
}

// ExchangeLineInput producto que se lleva el cliente a cambio.
type ExchangeLineInput struct {
	ProductID string
	VariantID string
	Qty       decimal.Decimal
}

// CreateReturnInput datos del flujo completo. CustomerID asigna cliente a una venta ocasional.
type CreateReturnInput struct {
	InvoiceNumber      string
	CustomerID         string
	Items              []ReturnLineInput
	CompensationType   string
	SurplusDisposition string
	ExchangeItems      []ExchangeLineInput
	Reason             string
}

// ReturnResult devolución confirmada.
type ReturnResult struct {
	Step       Step
	Return     *entity.CustomerReturn
	SaleStatus string
}

// UseCase orquestador de devoluciones y cambios.
type UseCase struct {
	txRunner ports.TxRunner
	ledger   *appinventory.StockLedger
	numbers  ports.NumberGenerator
	prefix   string
	repos    repository.Repos
	metrics  ports.Metrics
	log      *logger.Logger
}

// NewUseCase construye el orquestador. repos se usa para lecturas fuera de transacción.
func NewUseCase(
	txRunner ports.TxRunner,
	ledger *appinventory.StockLedger,
	numbers ports.NumberGenerator,
	returnPrefix string,
	repos repository.Repos,
	metrics ports.Metrics,
	log *logger.Logger,
) *UseCase {
	if returnPrefix == "" {
		returnPrefix = ports.PrefixReturn
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &UseCase{txRunner: txRunner, ledger: ledger, numbers: numbers, prefix: returnPrefix, repos: repos, metrics: metrics, log: log}
}

type exchangeLine struct {
	in      ExchangeLineInput
	variant *entity.ProductVariant
}

// CreateReturn recorre los pasos del flujo dentro de una transacción. Toda regla se valida
// antes de escribir: un rechazo no deja movimientos ni cambios de saldo.
// Bloqueos: cliente, venta, productos.
func (uc *UseCase) CreateReturn(ctx context.Context, actorUserID string, in CreateReturnInput) (*ReturnResult, error) {
	if in.InvoiceNumber == "" {
		return nil, domain.Invalid("invoice_number", "requerido")
	}
	if len(in.Items) == 0 {
		return nil, domain.Invalid("items", "seleccione al menos una línea")
	}
	now := time.Now()
	flow := NewFlow()
	var (
		result *ReturnResult
		batch  *appinventory.Batch
	)
	err := ports.WithDocumentNumber(ctx, uc.numbers, uc.prefix, func(number string) error {
		flow, result, batch = NewFlow(), &ReturnResult{}, uc.ledger.Batch()
		return uc.txRunner.Run(ctx, func(repos repository.Repos) error {
			// invoice_lookup
			found, err := repos.Sales.GetByInvoiceNumber(ctx, in.InvoiceNumber)
			if err != nil {
				return err
			}
			if found == nil {
				return domain.ErrNotFound
			}
			customerID := found.CustomerID
			if customerID == "" {
				customerID = in.CustomerID
			}
			var customer *entity.Customer
			if customerID != "" {
				if customer, err = repos.Customers.GetForUpdate(ctx, customerID); err != nil {
					return err
				}
				if customer == nil {
					return domain.ErrNotFound
				}
			}
			sale, err := repos.Sales.GetForUpdate(ctx, found.ID)
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
				return fmt.Errorf("venta anulada: %w", domain.ErrConflict)
			}
			returnable, err := buildReturnable(ctx, repos, sale)
			if err != nil {
				return err
			}
			if returnable.Blocked {
				return &domain.DebtOutstandingError{DebtID: returnable.Debt.ID, Remaining: returnable.Debt.RemainingAmount}
			}
			if err := flow.Advance(StepItemSelection); err != nil {
				return err
			}

			// item_selection
			byID := make(map[string]ReturnableItem, len(returnable.Items))
			for _, it := range returnable.Items {
				byID[it.ID] = it
			}
			v := domain.NewValidationError()
			seen := map[string]bool{}
			ret := &entity.CustomerReturn{
				ID:           uuid.New().String(),
				ReturnNumber: number,
				SaleID:       sale.ID,
				Status:       entity.ReturnStatusCompleted,
				Reason:       in.Reason,
				UserID:       actorUserID,
				CreatedAt:    now,
			}
			valueReturned := decimal.Zero
			for i, l := range in.Items {
				field := fmt.Sprintf("items[%d]", i)
				item, ok := byID[l.SaleItemID]
				if !ok {
					v.Add(field+".sale_item_id", "no pertenece a la venta")
					continue
				}
				if seen[l.SaleItemID] {
					v.Add(field+".sale_item_id", "línea repetida")
					continue
				}
				seen[l.SaleItemID] = true
				if !l.Qty.IsPositive() || l.Qty.GreaterThan(item.MaxReturnable) {
					v.Add(field+".qty", fmt.Sprintf("debe estar entre 0 y %s", item.MaxReturnable))
					continue
				}
				sub := l.Qty.Mul(item.PriceAtSale)
				valueReturned = valueReturned.Add(sub)
				ret.Items = append(ret.Items, entity.CustomerReturnItem{
					ID:                 uuid.New().String(),
					ReturnID:           ret.ID,
					SaleItemID:         item.ID,
					ProductID:          item.ProductID,
					VariantID:          item.VariantID,
					Qty:                l.Qty,
					PriceAtReturn:      item.PriceAtSale,
					UnitFactorAtReturn: item.UnitFactorAtSale,
					ReturnedToStock:    l.ReturnedToStock,
					Subtotal:           sub,
				})
			}
			if err := v.Err(); err != nil {
				return err
			}
			ret.TotalValueReturned = valueReturned
			if err := flow.Advance(StepCompensationSelection); err != nil {
				return err
			}

			// compensation_selection
			if sale.CustomerID != "" && in.CustomerID != "" && in.CustomerID != sale.CustomerID {
				return domain.Invalid("customer_id", "la venta ya tiene cliente")
			}
			ret.CustomerID = customerID
			ret.CompensationType = in.CompensationType

			var exchanges []exchangeLine
			switch in.CompensationType {
			case entity.CompensationRefund:
				ret.TotalRefund = valueReturned
			case entity.CompensationCreditNote:
				if customerID == "" {
					return domain.Invalid("customer_id", "requerido para nota crédito")
				}
				ret.CreditAdded = valueReturned
			case entity.CompensationExchange:
				exchanges, err = resolveExchange(ctx, repos, in.ExchangeItems)
				if err != nil {
					return err
				}
				exchangeValue := decimal.Zero
				for _, x := range exchanges {
					exchangeValue = exchangeValue.Add(x.in.Qty.Mul(x.variant.SellPrice))
				}
				if exchangeValue.GreaterThan(valueReturned) {
					return &domain.ExchangeOverLimitError{ReturnedValue: valueReturned, ExchangeValue: exchangeValue}
				}
				ret.TotalValueExchange = exchangeValue
				surplus := valueReturned.Sub(exchangeValue)
				disposition := in.SurplusDisposition
				if disposition == "" {
					disposition = entity.SurplusCash
				}
				switch disposition {
				case entity.SurplusCash:
					ret.TotalRefund = surplus
				case entity.SurplusCreditBalance:
					if customerID == "" && surplus.IsPositive() {
						return domain.Invalid("customer_id", "requerido para abonar el excedente al saldo")
					}
					ret.CreditAdded = surplus
				default:
					return domain.Invalid("surplus_disposition", "use cash o credit_balance")
				}
				ret.SurplusDisposition = disposition
				for _, x := range exchanges {
					ret.ExchangeItems = append(ret.ExchangeItems, entity.CustomerExchangeItem{
						ID:                   uuid.New().String(),
						ReturnID:             ret.ID,
						ProductID:            x.in.ProductID,
						VariantID:            x.variant.ID,
						Qty:                  x.in.Qty,
						PriceAtExchange:      x.variant.SellPrice,
						UnitFactorAtExchange: x.variant.ConversionToBase,
						Subtotal:             x.in.Qty.Mul(x.variant.SellPrice),
					})
				}
			default:
				return domain.Invalid("compensation_type", "use refund, credit_note o exchange")
			}

			// efectos de stock: lo reingresado cuenta para el cambio
			ids := make([]string, 0, len(ret.Items)+len(exchanges))
			for _, it := range ret.Items {
				ids = append(ids, it.ProductID)
			}
			for _, x := range exchanges {
				ids = append(ids, x.in.ProductID)
			}
			products, err := appinventory.LockProducts(ctx, repos, ids)
			if err != nil {
				return err
			}
			avail := appinventory.NewAvailability(products)
			for _, it := range ret.Items {
				if it.ReturnedToStock {
					avail.Add(it.ProductID, inventory.ToBaseUnit(it.Qty, it.UnitFactorAtReturn))
				}
			}
			for _, x := range exchanges {
				avail.Take(x.in.ProductID, x.variant.ID, x.variant.Name, inventory.ToBaseUnit(x.in.Qty, x.variant.ConversionToBase))
			}
			if err := avail.Err(); err != nil {
				return err
			}

			// commit
			if err := repos.Returns.Create(ctx, ret); err != nil {
				return err
			}
			costs := saleItemCosts(sale)
			for _, it := range ret.Items {
				mt := entity.MutationWaste
				qty := decimal.Zero
				if it.ReturnedToStock {
					mt = entity.MutationReturnRestock
					qty = inventory.ToBaseUnit(it.Qty, it.UnitFactorAtReturn)
				}
				if _, err := batch.Record(ctx, repos, appinventory.MutationInput{
					ProductID: it.ProductID,
					VariantID: it.VariantID,
					Type:      mt,
					QtyBase:   qty,
					UnitCost:  inventory.CostPerBaseUnit(costs[it.SaleItemID], it.UnitFactorAtReturn),
					Reference: number,
					Notes:     in.Reason,
					UserID:    actorUserID,
					At:        now,
				}); err != nil {
					return err
				}
			}
			for _, x := range ret.ExchangeItems {
				if _, err := batch.Record(ctx, repos, appinventory.MutationInput{
					ProductID: x.ProductID,
					VariantID: x.VariantID,
					Type:      entity.MutationExchange,
					QtyBase:   inventory.ToBaseUnit(x.Qty, x.UnitFactorAtExchange).Neg(),
					UnitCost:  products[x.ProductID].AverageCost,
					Reference: number,
					UserID:    actorUserID,
					At:        now,
				}); err != nil {
					return err
				}
			}
			if ret.CreditAdded.IsPositive() {
				if err := repos.Customers.UpdateCreditBalance(ctx, customer.ID, customer.CreditBalance.Add(ret.CreditAdded)); err != nil {
					return err
				}
			}

			status := sale.Status
			if fullyReturned(returnable.Items, ret.Items) {
				status = entity.SaleStatusRefunded
				if err := repos.Sales.UpdateStatus(ctx, sale.ID, status, nil); err != nil {
					return err
				}
			}

			result.Return = ret
			result.SaleStatus = status
			return flow.Advance(StepCommitted)
		})
	})
	if err != nil {
		ev := uc.log.Warn()
		if !isBusinessError(err) {
			ev = uc.log.Error()
		}
		ev.Err(err).Str("invoice", in.InvoiceNumber).Str("step", string(flow.Step())).Msg("devolución rechazada")
		return nil, err
	}
	batch.Commit()
	result.Step = flow.Step()
	uc.metrics.ReturnCommitted(result.Return.CompensationType, result.Return.TotalValueReturned)
	uc.log.Info().
		Str("return", result.Return.ReturnNumber).
		Str("invoice", in.InvoiceNumber).
		Str("type", result.Return.CompensationType).
		Str("value", result.Return.TotalValueReturned.String()).
		Msg("devolución registrada")
	return result, nil
}

func resolveExchange(ctx context.Context, repos repository.Repos, lines []ExchangeLineInput) ([]exchangeLine, error) {
	if len(lines) == 0 {
		return nil, domain.Invalid("exchange_items", "seleccione al menos un producto de cambio")
	}
	v := domain.NewValidationError()
	out := make([]exchangeLine, 0, len(lines))
	for i, l := range lines {
		field := fmt.Sprintf("exchange_items[%d]", i)
		if !l.Qty.IsPositive() {
			v.Add(field+".qty", "debe ser mayor a cero")
			continue
		}
		variant, err := repos.Variants.GetByID(ctx, l.VariantID)
		if err != nil {
			return nil, err
		}
		if variant == nil || variant.ProductID != l.ProductID || !variant.IsActive {
			v.Add(field+".variant_id", "variante no encontrada para el producto")
			continue
		}
		out = append(out, exchangeLine{in: l, variant: variant})
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func saleItemCosts(sale *entity.Sale) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(sale.Items))
	for _, it := range sale.Items {
		out[it.ID] = it.CostAtSale
	}
	return out
}

// fullyReturned true si con esta devolución no queda nada por devolver en la venta.
func fullyReturned(items []ReturnableItem, now []entity.CustomerReturnItem) bool {
	add := make(map[string]decimal.Decimal, len(now))
	for _, it := range now {
		add[it.SaleItemID] = add[it.SaleItemID].Add(it.Qty)
	}
	for _, it := range items {
		if it.MaxReturnable.Sub(add[it.ID]).IsPositive() {
			return false
		}
	}
	return true
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput, domain.ErrNotFound, domain.ErrConflict, domain.ErrInsufficientStock,
		domain.ErrExchangeOverLimit, domain.ErrDebtOutstanding, domain.ErrBalanceExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
