package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de compensación de una devolución.
const (
	CompensationRefund     = "refund"
	CompensationCreditNote = "credit_note"
	CompensationExchange   = "exchange"
)

// Destino del excedente en un cambio.
const (
	SurplusCash          = "cash"
	SurplusCreditBalance = "credit_balance"
)

// Estados de devolución.
const (
	ReturnStatusCompleted = "completed"
	ReturnStatusCancelled = "cancelled"
)

// CustomerReturn devolución sobre una venta, con sus líneas devueltas y de cambio.
type CustomerReturn struct {
	ID                 string
	ReturnNumber       string
	SaleID             string
	CustomerID         string
	TotalValueReturned decimal.Decimal
	TotalValueExchange decimal.Decimal
	TotalRefund        decimal.Decimal // efectivo entregado al cliente
	CreditAdded        decimal.Decimal // sumado al saldo a favor
	CompensationType   string
	SurplusDisposition string
	Status             string
	Reason             string
	UserID             string
	CreatedAt          time.Time
	CancelledAt        *time.Time
	CancelledBy        string
	Items              []CustomerReturnItem
	ExchangeItems      []CustomerExchangeItem
}

// CustomerReturnItem línea devuelta. ReturnedToStock=false significa merma.
type CustomerReturnItem struct {
	ID                 string
	ReturnID           string
	SaleItemID         string
	ProductID          string
	VariantID          string
	Qty                decimal.Decimal
	PriceAtReturn      decimal.Decimal
	UnitFactorAtReturn decimal.Decimal
	ReturnedToStock    bool
	Subtotal           decimal.Decimal
}

// CustomerExchangeItem producto entregado a cambio.
type CustomerExchangeItem struct {
	ID                   string
	ReturnID             string
	ProductID            string
	VariantID            string
	Qty                  decimal.Decimal
	PriceAtExchange      decimal.Decimal
	UnitFactorAtExchange decimal.Decimal
	Subtotal             decimal.Decimal
}
