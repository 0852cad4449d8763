package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseLineRequest línea de POST /api/purchases.
type PurchaseLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	VariantID string          `json:"variant_id,omitempty"`
	Qty       decimal.Decimal `json:"qty" validate:"gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost" validate:"gte=0"`
}

// ReceivePurchaseRequest body para POST /api/purchases.
type ReceivePurchaseRequest struct {
	SupplierName string                `json:"supplier_name" validate:"required,max=200"`
	Notes        string                `json:"notes,omitempty" validate:"max=500"`
	Items        []PurchaseLineRequest `json:"items" validate:"required,min=1,dive"`
}

// AdjustStockRequest body para POST /api/inventory/adjustments.
type AdjustStockRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	VariantID string           `json:"variant_id,omitempty"`
	Qty       decimal.Decimal  `json:"qty" validate:"ne=0"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Notes     string           `json:"notes" validate:"required,max=500"`
}

// SupplierReturnRequest body para POST /api/inventory/supplier-returns.
type SupplierReturnRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	VariantID string          `json:"variant_id,omitempty"`
	Qty       decimal.Decimal `json:"qty" validate:"gt=0"`
	Reference string          `json:"reference,omitempty" validate:"max=100"`
	Notes     string          `json:"notes,omitempty" validate:"max=500"`
}

// StockMutationDTO fila del kardex.
type StockMutationDTO struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	VariantID   string          `json:"variant_id,omitempty"`
	Type        string          `json:"type"`
	QtyBaseUnit decimal.Decimal `json:"qty_base_unit"`
	StockBefore decimal.Decimal `json:"stock_before"`
	StockAfter  decimal.Decimal `json:"stock_after"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	UserID      string          `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto bajo su stock mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID           string          `json:"product_id"`
	SKU                 string          `json:"sku"`
	ProductName         string          `json:"product_name"`
	BaseUnit            string          `json:"base_unit"`
	CurrentStock        decimal.Decimal `json:"current_stock"`
	MinStock            decimal.Decimal `json:"min_stock"`
	IdealStock          decimal.Decimal `json:"ideal_stock"`         // MinStock * 1.5
	SuggestedOrderQty   decimal.Decimal `json:"suggested_order_qty"` // IdealStock - CurrentStock
	UnitCost            decimal.Decimal `json:"unit_cost"`           // costo promedio por unidad base
	EstimatedOrderCost  decimal.Decimal `json:"estimated_order_cost"`
	GrossMarginPct      decimal.Decimal `json:"gross_margin_pct"`
	UnitsSoldLast90Days decimal.Decimal `json:"units_sold_last_90d"`
	Priority            int             `json:"priority"`
}

// PurchaseItemResponse línea de compra con costo y factor usados.
type PurchaseItemResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	VariantID  string          `json:"variant_id,omitempty"`
	Qty        decimal.Decimal `json:"qty"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	UnitFactor decimal.Decimal `json:"unit_factor"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// PurchaseResponse salida de una compra.
type PurchaseResponse struct {
	ID           string                 `json:"id"`
	Reference    string                 `json:"reference"`
	SupplierName string                 `json:"supplier_name"`
	Total        decimal.Decimal        `json:"total"`
	Status       string                 `json:"status"`
	Notes        string                 `json:"notes,omitempty"`
	UserID       string                 `json:"user_id"`
	CreatedAt    time.Time              `json:"created_at"`
	CancelledAt  *time.Time             `json:"cancelled_at,omitempty"`
	Items        []PurchaseItemResponse `json:"items,omitempty"`
}
