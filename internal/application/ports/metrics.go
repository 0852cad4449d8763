package ports

import "github.com/shopspring/decimal"

// Metrics contadores de negocio. La implementación real vive en infrastructure/metrics.
type Metrics interface {
	SaleCommitted(total decimal.Decimal)
	SaleRejected(reason string)
	SaleCancelled()
	ReturnCommitted(compensationType string, value decimal.Decimal)
	ReturnCancelled()
	StockMutation(mutationType string)
	DebtPayment(amount decimal.Decimal)
}

// NopMetrics descarta todo (tests y arranque sin métricas).
type NopMetrics struct{}

func (NopMetrics) SaleCommitted(decimal.Decimal)           {}
func (NopMetrics) SaleRejected(string)                     {}
func (NopMetrics) SaleCancelled()                          {}
func (NopMetrics) ReturnCommitted(string, decimal.Decimal) {}
func (NopMetrics) ReturnCancelled()                        {}
func (NopMetrics) StockMutation(string)                    {}
func (NopMetrics) DebtPayment(decimal.Decimal)             {}
