package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnLineRequest cantidad a devolver de una línea de la venta.
type ReturnLineRequest struct {
	SaleItemID      string          `json:"sale_item_id" validate:"required"`
	Qty             decimal.Decimal `json:"qty" validate:"gt=0"`
	ReturnedToStock bool            `json:"returned_to_stock"`
}

// ExchangeLineRequest producto entregado a cambio.
type ExchangeLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	VariantID string          `json:"variant_id" validate:"required"`
	Qty       decimal.Decimal `json:"qty" validate:"gt=0"`
}

// CreateReturnRequest body de POST /api/returns.
type CreateReturnRequest struct {
	InvoiceNumber      string                `json:"invoice_number" validate:"required"`
	CustomerID         string                `json:"customer_id,omitempty"`
	Items              []ReturnLineRequest   `json:"items" validate:"required,min=1,dive"`
	CompensationType   string                `json:"compensation_type" validate:"required,oneof=refund credit_note exchange"`
	SurplusDisposition string                `json:"surplus_disposition,omitempty" validate:"omitempty,oneof=cash credit_balance"`
	ExchangeItems      []ExchangeLineRequest `json:"exchange_items,omitempty" validate:"omitempty,dive"`
	Reason             string                `json:"reason,omitempty" validate:"max=500"`
}

// ReturnableItemResponse línea de la venta con lo devuelto y lo disponible.
type ReturnableItemResponse struct {
	SaleItemResponse
	ReturnedQty   decimal.Decimal `json:"returned_qty"`
	MaxReturnable decimal.Decimal `json:"max_returnable"`
}

// ReturnableSaleResponse respuesta de GET /api/returns/lookup/:invoice.
type ReturnableSaleResponse struct {
	Sale    SaleResponse             `json:"sale"`
	Items   []ReturnableItemResponse `json:"items"`
	Blocked bool                     `json:"blocked"`
	Debt    *DebtResponse            `json:"debt,omitempty"`
}

// ReturnItemResponse línea devuelta.
type ReturnItemResponse struct {
	ID                 string          `json:"id"`
	SaleItemID         string          `json:"sale_item_id"`
	ProductID          string          `json:"product_id"`
	VariantID          string          `json:"variant_id"`
	Qty                decimal.Decimal `json:"qty"`
	PriceAtReturn      decimal.Decimal `json:"price_at_return"`
	UnitFactorAtReturn decimal.Decimal `json:"unit_factor_at_return"`
	ReturnedToStock    bool            `json:"returned_to_stock"`
	Subtotal           decimal.Decimal `json:"subtotal"`
}

// ExchangeItemResponse línea entregada a cambio.
type ExchangeItemResponse struct {
	ID                   string          `json:"id"`
	ProductID            string          `json:"product_id"`
	VariantID            string          `json:"variant_id"`
	Qty                  decimal.Decimal `json:"qty"`
	PriceAtExchange      decimal.Decimal `json:"price_at_exchange"`
	UnitFactorAtExchange decimal.Decimal `json:"unit_factor_at_exchange"`
	Subtotal             decimal.Decimal `json:"subtotal"`
}

// ReturnResponse salida de una devolución.
type ReturnResponse struct {
	ID                 string                 `json:"id"`
	ReturnNumber       string                 `json:"return_number"`
	SaleID             string                 `json:"sale_id"`
	CustomerID         string                 `json:"customer_id,omitempty"`
	TotalValueReturned decimal.Decimal        `json:"total_value_returned"`
	TotalValueExchange decimal.Decimal        `json:"total_value_exchange"`
	TotalRefund        decimal.Decimal        `json:"total_refund"`
	CreditAdded        decimal.Decimal        `json:"credit_added"`
	CompensationType   string                 `json:"compensation_type"`
	SurplusDisposition string                 `json:"surplus_disposition,omitempty"`
	Status             string                 `json:"status"`
	Reason             string                 `json:"reason,omitempty"`
	UserID             string                 `json:"user_id"`
	CreatedAt          time.Time              `json:"created_at"`
	CancelledAt        *time.Time             `json:"cancelled_at,omitempty"`
	Items              []ReturnItemResponse   `json:"items"`
	ExchangeItems      []ExchangeItemResponse `json:"exchange_items,omitempty"`
}

// ReturnResultResponse respuesta de POST /api/returns.
type ReturnResultResponse struct {
	Step       string         `json:"step"`
	SaleStatus string         `json:"sale_status"`
	Return     ReturnResponse `json:"return"`
}
