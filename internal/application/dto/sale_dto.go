package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea del carrito; qty en unidades de la variante.
type SaleLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	VariantID string          `json:"variant_id" validate:"required"`
	Qty       decimal.Decimal `json:"qty" validate:"gt=0"`
}

// CreateSaleRequest body de POST /api/sales.
type CreateSaleRequest struct {
	CustomerID       string            `json:"customer_id,omitempty"`
	Items            []SaleLineRequest `json:"items" validate:"required,min=1,dive"`
	TotalPaid        decimal.Decimal   `json:"total_paid" validate:"gte=0"`
	TotalBalanceUsed decimal.Decimal   `json:"total_balance_used" validate:"gte=0"`
	ShouldPayOldDebt bool              `json:"should_pay_old_debt"`
	IsDebt           bool              `json:"is_debt"`
	Notes            string            `json:"notes,omitempty" validate:"max=500"`
}

// CancelRequest motivo opcional de anulación.
type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// SaleItemResponse línea con precio, factor y costo congelados.
type SaleItemResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	VariantID        string          `json:"variant_id"`
	VariantName      string          `json:"variant_name"`
	Qty              decimal.Decimal `json:"qty"`
	PriceAtSale      decimal.Decimal `json:"price_at_sale"`
	UnitFactorAtSale decimal.Decimal `json:"unit_factor_at_sale"`
	Subtotal         decimal.Decimal `json:"subtotal"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID               string             `json:"id"`
	InvoiceNumber    string             `json:"invoice_number"`
	CustomerID       string             `json:"customer_id,omitempty"`
	Subtotal         decimal.Decimal    `json:"subtotal"`
	TotalPrice       decimal.Decimal    `json:"total_price"`
	TotalPaid        decimal.Decimal    `json:"total_paid"`
	TotalReturn      decimal.Decimal    `json:"total_return"`
	TotalBalanceUsed decimal.Decimal    `json:"total_balance_used"`
	OldDebtPaid      decimal.Decimal    `json:"old_debt_paid"`
	Status           string             `json:"status"`
	Notes            string             `json:"notes,omitempty"`
	UserID           string             `json:"user_id"`
	CreatedAt        time.Time          `json:"created_at"`
	CancelledAt      *time.Time         `json:"cancelled_at,omitempty"`
	Items            []SaleItemResponse `json:"items"`
}

// SaleResultResponse respuesta de POST /api/sales.
type SaleResultResponse struct {
	State           string                `json:"state"`
	Sale            SaleResponse          `json:"sale"`
	Change          decimal.Decimal       `json:"change"`
	Debt            *DebtResponse         `json:"debt,omitempty"`
	OldDebtPayments []DebtPaymentResponse `json:"old_debt_payments,omitempty"`
}
