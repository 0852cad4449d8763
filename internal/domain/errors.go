package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrUserNotFound          = errors.New("usuario no encontrado")
	ErrUsernameAlreadyExists = errors.New("el usuario ya está registrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrDuplicate             = errors.New("recurso duplicado")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrConflict              = errors.New("conflicto con el estado actual")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrBalanceExceeded       = errors.New("saldo a favor insuficiente")
	ErrExchangeOverLimit     = errors.New("el cambio supera el valor devuelto")
	ErrDebtOutstanding       = errors.New("la venta tiene una deuda pendiente")
	ErrInsufficientPayment   = errors.New("pago insuficiente")
	ErrPaymentExceedsDebt    = errors.New("el pago supera el saldo de la deuda")
)

// ErrNumberTaken número de documento ya usado, típicamente por un contador reiniciado.
// errors.Is(err, ErrDuplicate) es true.
var ErrNumberTaken = fmt.Errorf("%w: número de documento ya usado", ErrDuplicate)

// ValidationError agrupa mensajes por campo. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError crea un ValidationError vacío.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add agrega un mensaje al campo.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// HasErrors indica si hay al menos un campo inválido.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Err devuelve nil si no hay errores; útil al final de una validación.
func (e *ValidationError) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid atajo para un único campo inválido.
func Invalid(field, msg string) error {
	v := NewValidationError()
	v.Add(field, msg)
	return v
}

// StockShortfall detalle de una línea sin stock suficiente (cantidades en unidad base).
type StockShortfall struct {
	ProductID   string          `json:"product_id"`
	VariantID   string          `json:"variant_id,omitempty"`
	VariantName string          `json:"variant_name,omitempty"`
	Requested   decimal.Decimal `json:"requested"`
	Available   decimal.Decimal `json:"available"`
	Shortfall   decimal.Decimal `json:"shortfall"`
}

// InsufficientStockError lista todas las líneas que no alcanzan.
type InsufficientStockError struct {
	Lines []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		parts = append(parts, fmt.Sprintf("%s faltan %s", l.ProductID, l.Shortfall.String()))
	}
	return fmt.Sprintf("%s: %s", ErrInsufficientStock.Error(), strings.Join(parts, "; "))
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// BalanceExceededError uso de saldo por encima de lo disponible.
type BalanceExceededError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *BalanceExceededError) Error() string {
	return fmt.Sprintf("%s: solicitado %s, disponible %s", ErrBalanceExceeded.Error(), e.Requested, e.Available)
}

func (e *BalanceExceededError) Is(target error) bool { return target == ErrBalanceExceeded }

// ExchangeOverLimitError el valor de reemplazo supera el valor devuelto.
type ExchangeOverLimitError struct {
	ReturnedValue decimal.Decimal
	ExchangeValue decimal.Decimal
}

func (e *ExchangeOverLimitError) Error() string {
	return fmt.Sprintf("%s: devuelto %s, cambio %s", ErrExchangeOverLimit.Error(), e.ReturnedValue, e.ExchangeValue)
}

func (e *ExchangeOverLimitError) Is(target error) bool { return target == ErrExchangeOverLimit }

// DebtOutstandingError bloquea devoluciones sobre ventas con deuda activa.
type DebtOutstandingError struct {
	DebtID    string
	Remaining decimal.Decimal
}

func (e *DebtOutstandingError) Error() string {
	return fmt.Sprintf("%s: deuda %s, saldo %s", ErrDebtOutstanding.Error(), e.DebtID, e.Remaining)
}

func (e *DebtOutstandingError) Is(target error) bool { return target == ErrDebtOutstanding }

// InsufficientPaymentError el pago no cubre el total requerido y la venta no es a crédito.
type InsufficientPaymentError struct {
	Required decimal.Decimal
	Paid     decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("%s: requerido %s, pagado %s", ErrInsufficientPayment.Error(), e.Required, e.Paid)
}

func (e *InsufficientPaymentError) Is(target error) bool { return target == ErrInsufficientPayment }

// PaymentExceedsDebtError abono mayor al saldo pendiente.
type PaymentExceedsDebtError struct {
	Amount    decimal.Decimal
	Remaining decimal.Decimal
}

func (e *PaymentExceedsDebtError) Error() string {
	return fmt.Sprintf("%s: abono %s, saldo %s", ErrPaymentExceedsDebt.Error(), e.Amount, e.Remaining)
}

func (e *PaymentExceedsDebtError) Is(target error) bool { return target == ErrPaymentExceedsDebt }
