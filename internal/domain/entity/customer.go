package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer cliente de la tienda. CreditBalance es saldo a favor (vales / notas crédito).
// La deuda total se deriva de las deudas activas, no se almacena.
type Customer struct {
	ID            string
	Name          string
	Phone         string
	Email         string
	Address       string
	CreditBalance decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
