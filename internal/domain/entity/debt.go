package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de deuda.
const (
	DebtStatusUnpaid    = "unpaid"
	DebtStatusPartial   = "partial"
	DebtStatusPaid      = "paid"
	DebtStatusCancelled = "cancelled"
)

// Debt saldo pendiente de una venta fiada. RemainingAmount solo baja con abonos.
type Debt struct {
	ID              string
	SaleID          string
	CustomerID      string
	OriginalAmount  decimal.Decimal
	RemainingAmount decimal.Decimal
	Status          string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PaidAt          *time.Time
}

// DebtPayment abono a una deuda. SaleID se llena cuando el abono se hizo desde una venta;
// un monto negativo es la reversa de un abono.
type DebtPayment struct {
	ID        string
	DebtID    string
	SaleID    string
	Amount    decimal.Decimal
	UserID    string
	CreatedAt time.Time
}
