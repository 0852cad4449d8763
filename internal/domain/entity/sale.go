package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de venta.
const (
	SaleStatusDebt      = "debt"
	SaleStatusCompleted = "completed"
	SaleStatusRefunded  = "refunded"
	SaleStatusCancelled = "cancelled"
)

// Sale cabecera de una venta. CustomerID vacío = cliente ocasional.
type Sale struct {
	ID               string
	InvoiceNumber    string
	CustomerID       string
	Subtotal         decimal.Decimal
	TotalPrice       decimal.Decimal // Subtotal - TotalBalanceUsed
	TotalPaid        decimal.Decimal // efectivo recibido
	TotalReturn      decimal.Decimal // cambio entregado
	TotalBalanceUsed decimal.Decimal // saldo a favor aplicado
	OldDebtPaid      decimal.Decimal // abonado a deudas anteriores en esta venta
	Status           string
	Notes            string
	UserID           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CancelledAt      *time.Time
	Items            []SaleItem
}

// SaleItem línea de venta. Precio, factor y costo quedan congelados al vender.
type SaleItem struct {
	ID               string
	SaleID           string
	ProductID        string
	VariantID        string
	VariantName      string
	Qty              decimal.Decimal // unidades de la variante
	PriceAtSale      decimal.Decimal
	UnitFactorAtSale decimal.Decimal
	CostAtSale       decimal.Decimal // costo promedio x factor, por unidad vendida
	Subtotal         decimal.Decimal
}
