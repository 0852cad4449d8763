package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_ContadoresDeNegocio(t *testing.T) {
	m := New("pos")
	m.SaleCommitted(decimal.NewFromInt(15000))
	m.SaleCommitted(decimal.NewFromInt(5000))
	m.SaleRejected("insufficient_stock")
	m.ReturnCommitted("exchange", decimal.NewFromInt(20000))
	m.StockMutation("sale")
	m.StockMutation("sale")
	m.DebtPayment(decimal.NewFromInt(-100))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.salesCommitted))
	assert.Equal(t, 20000.0, testutil.ToFloat64(m.salesAmount))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.salesRejected.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 20000.0, testutil.ToFloat64(m.returnsValue.WithLabelValues("exchange")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.stockMutations.WithLabelValues("sale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.debtPayments))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.debtPaidAmount))
}

func TestPrometheus_MiddlewareYHandler(t *testing.T) {
	m := New("pos")
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/sales/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/sales/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/sales/:id", "204")))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "pos_http_requests_total"))
}
