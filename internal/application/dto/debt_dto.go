package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest body de POST /api/debts/:id/payments.
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

// DebtResponse salida de una deuda.
type DebtResponse struct {
	ID              string          `json:"id"`
	SaleID          string          `json:"sale_id"`
	CustomerID      string          `json:"customer_id"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          string          `json:"status"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
}

// DebtPaymentResponse abono (negativo = reversa).
type DebtPaymentResponse struct {
	ID        string          `json:"id"`
	DebtID    string          `json:"debt_id"`
	SaleID    string          `json:"sale_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	UserID    string          `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// PaymentResultResponse respuesta de un abono.
type PaymentResultResponse struct {
	Debt    DebtResponse        `json:"debt"`
	Payment DebtPaymentResponse `json:"payment"`
}

// CustomerDebtsResponse deudas de un cliente con total pendiente.
type CustomerDebtsResponse struct {
	Customer  CustomerResponse `json:"customer"`
	TotalDebt decimal.Decimal  `json:"total_debt"`
	Debts     []DebtResponse   `json:"debts"`
}
