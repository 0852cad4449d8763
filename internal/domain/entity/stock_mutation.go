package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MutationType causa de un cambio de inventario.
type MutationType string

const (
	MutationPurchase       MutationType = "purchase"
	MutationPurchaseCancel MutationType = "purchase_cancel"
	MutationSale           MutationType = "sale"
	MutationSaleCancel     MutationType = "sale_cancel"
	MutationReturnRestock  MutationType = "return_restock"
	MutationReturnCancel   MutationType = "return_cancel"
	MutationWaste          MutationType = "waste"
	MutationSupplierReturn MutationType = "supplier_return"
	MutationAdjustment     MutationType = "adjustment"
	MutationExchange       MutationType = "exchange"
	MutationExchangeCancel MutationType = "exchange_cancel"
)

// Valid indica si el tipo es conocido.
func (t MutationType) Valid() bool {
	switch t {
	case MutationPurchase, MutationPurchaseCancel, MutationSale, MutationSaleCancel,
		MutationReturnRestock, MutationReturnCancel, MutationWaste, MutationSupplierReturn,
		MutationAdjustment, MutationExchange, MutationExchangeCancel:
		return true
	}
	return false
}

// StockMutation registro inmutable de un cambio de stock.
// QtyBaseUnit lleva signo: positivo entra, negativo sale. StockBefore/StockAfter son la foto del producto.
type StockMutation struct {
	ID          string
	ProductID   string
	VariantID   string // vacío si el movimiento no es por variante
	Type        MutationType
	QtyBaseUnit decimal.Decimal
	StockBefore decimal.Decimal
	StockAfter  decimal.Decimal
	UnitCost    decimal.Decimal // costo por unidad base al momento del movimiento
	Reference   string          // factura, devolución, compra
	Notes       string
	UserID      string
	Seq         int64 // orden de inserción, lo asigna el repositorio
	CreatedAt   time.Time
}
