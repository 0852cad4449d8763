package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de compra.
const (
	PurchaseStatusReceived  = "received"
	PurchaseStatusCancelled = "cancelled"
)

// Purchase recepción de mercancía de un proveedor.
type Purchase struct {
	ID           string
	Reference    string
	SupplierName string
	Total        decimal.Decimal
	Status       string
	Notes        string
	UserID       string
	CreatedAt    time.Time
	CancelledAt  *time.Time
	Items        []PurchaseItem
}

// PurchaseItem línea de compra. UnitCost es por unidad de la variante.
type PurchaseItem struct {
	ID         string
	PurchaseID string
	ProductID  string
	VariantID  string
	Qty        decimal.Decimal
	UnitCost   decimal.Decimal
	UnitFactor decimal.Decimal
	Subtotal   decimal.Decimal
}
