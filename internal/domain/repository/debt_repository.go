package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// DebtRepository puerto del libro de deudas y sus abonos.
type DebtRepository interface {
	Create(ctx context.Context, debt *entity.Debt) error
	GetByID(ctx context.Context, id string) (*entity.Debt, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Debt, error)
	GetBySaleID(ctx context.Context, saleID string) (*entity.Debt, error)
	// ListActiveByCustomerForUpdate bloquea las deudas activas del cliente, más antigua primero.
	ListActiveByCustomerForUpdate(ctx context.Context, customerID string) ([]*entity.Debt, error)
	ListByCustomer(ctx context.Context, customerID string, onlyActive bool) ([]*entity.Debt, error)
	Update(ctx context.Context, debt *entity.Debt) error
	CreatePayment(ctx context.Context, payment *entity.DebtPayment) error
	ListPaymentsBySale(ctx context.Context, saleID string) ([]*entity.DebtPayment, error)
	ListPayments(ctx context.Context, debtID string) ([]*entity.DebtPayment, error)
}
