// Package metrics expone contadores Prometheus del POS y el middleware HTTP de Fiber.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/ports"
)

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus implementa ports.Metrics sobre un registry propio.
type Prometheus struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	salesCommitted   prometheus.Counter
	salesAmount      prometheus.Counter
	salesRejected    *prometheus.CounterVec
	salesCancelled   prometheus.Counter
	returnsCommitted *prometheus.CounterVec
	returnsValue     *prometheus.CounterVec
	returnsCancelled prometheus.Counter
	stockMutations   *prometheus.CounterVec
	debtPayments     prometheus.Counter
	debtPaidAmount   prometheus.Counter
}

// New registra todas las series. namespace suele ser "pos".
func New(namespace string) *Prometheus {
	m := &Prometheus{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds", Help: "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		salesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_committed_total", Help: "Ventas confirmadas",
		}),
		salesAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_amount_total", Help: "Suma de totales de venta",
		}),
		salesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_rejected_total", Help: "Ventas rechazadas por motivo",
		}, []string{"reason"}),
		salesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_cancelled_total", Help: "Ventas anuladas",
		}),
		returnsCommitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "returns_committed_total", Help: "Devoluciones por tipo de compensación",
		}, []string{"compensation"}),
		returnsValue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "returns_value_total", Help: "Valor devuelto por tipo de compensación",
		}, []string{"compensation"}),
		returnsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "returns_cancelled_total", Help: "Devoluciones anuladas",
		}),
		stockMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stock_mutations_total", Help: "Movimientos de kardex por tipo",
		}, []string{"type"}),
		debtPayments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "debt_payments_total", Help: "Abonos a deudas",
		}),
		debtPaidAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "debt_paid_amount_total", Help: "Monto abonado a deudas",
		}),
	}
	m.registry.MustRegister(
		m.httpRequests, m.httpDuration,
		m.salesCommitted, m.salesAmount, m.salesRejected, m.salesCancelled,
		m.returnsCommitted, m.returnsValue, m.returnsCancelled,
		m.stockMutations, m.debtPayments, m.debtPaidAmount,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Registry para tests y para el handler de /metrics.
func (m *Prometheus) Registry() *prometheus.Registry { return m.registry }

// Handler sirve /metrics (se monta en Fiber con adaptor.HTTPHandler).
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware cuenta requests por ruta registrada (no por URL cruda, para no explotar cardinalidad).
func (m *Prometheus) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		if path == "" {
			path = "undefined"
		}
		m.httpRequests.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Prometheus) SaleCommitted(total decimal.Decimal) {
	m.salesCommitted.Inc()
	m.salesAmount.Add(total.InexactFloat64())
}

func (m *Prometheus) SaleRejected(reason string) { m.salesRejected.WithLabelValues(reason).Inc() }

func (m *Prometheus) SaleCancelled() { m.salesCancelled.Inc() }

func (m *Prometheus) ReturnCommitted(compensationType string, value decimal.Decimal) {
	m.returnsCommitted.WithLabelValues(compensationType).Inc()
	m.returnsValue.WithLabelValues(compensationType).Add(value.InexactFloat64())
}

func (m *Prometheus) ReturnCancelled() { m.returnsCancelled.Inc() }

func (m *Prometheus) StockMutation(mutationType string) {
	m.stockMutations.WithLabelValues(mutationType).Inc()
}

func (m *Prometheus) DebtPayment(amount decimal.Decimal) {
	m.debtPayments.Inc()
	// Counter.Add entra en pánico con valores negativos
	if amount.IsPositive() {
		m.debtPaidAmount.Add(amount.InexactFloat64())
	}
}
