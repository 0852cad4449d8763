package inventory

import "github.com/shopspring/decimal"

// RecomputeAverageCost implementa el costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((CostoActual * StockActual) + (CostoEntrada * CantEntrada)) / (StockActual + CantEntrada)
// Si el denominador es cero (stock agotado y entrada nula) devuelve el costo de entrada.
func RecomputeAverageCost(currentAvgCost, currentStockBase, incomingQtyBase, incomingUnitCost decimal.Decimal) decimal.Decimal {
	sum := currentStockBase.Add(incomingQtyBase)
	if sum.IsZero() {
		return incomingUnitCost
	}
	num := currentAvgCost.Mul(currentStockBase).Add(incomingUnitCost.Mul(incomingQtyBase))
	return num.Div(sum)
}
