package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestToBaseUnit(t *testing.T) {
	assert.True(t, inventory.ToBaseUnit(d("3"), d("12")).Equal(d("36")))
	assert.True(t, inventory.ToBaseUnit(d("0.5"), d("1000")).Equal(d("500")))
	assert.True(t, inventory.ToBaseUnit(decimal.Zero, d("12")).IsZero(), "qty 0 debe dar 0")
}

func TestCostPerBaseUnit(t *testing.T) {
	assert.True(t, inventory.CostPerBaseUnit(d("120"), d("12")).Equal(d("10")))
	assert.True(t, inventory.CostPerBaseUnit(d("7"), decimal.Zero).Equal(d("7")))
}

func TestRecomputeAverageCost_Ponderado(t *testing.T) {
	// 10 u a 100 + 30 u a 200 = (1000 + 6000) / 40 = 175
	got := inventory.RecomputeAverageCost(d("100"), d("10"), d("30"), d("200"))
	assert.True(t, got.Equal(d("175")), "got %s", got)
}

func TestRecomputeAverageCost_StockCeroDevuelveCostoEntrada(t *testing.T) {
	for _, avg := range []string{"0", "55.5", "99999"} {
		got := inventory.RecomputeAverageCost(d(avg), decimal.Zero, d("24"), d("1500"))
		assert.True(t, got.Equal(d("1500")), "avg=%s got %s", avg, got)
	}
}

func TestRecomputeAverageCost_DenominadorCero(t *testing.T) {
	got := inventory.RecomputeAverageCost(d("80"), decimal.Zero, decimal.Zero, d("42"))
	assert.True(t, got.Equal(d("42")))
}
