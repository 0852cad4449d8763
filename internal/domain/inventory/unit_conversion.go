package inventory

import "github.com/shopspring/decimal"

// ToBaseUnit convierte cantidad de variante a unidad base: qty * factor.
func ToBaseUnit(qty, conversionFactor decimal.Decimal) decimal.Decimal {
	if qty.IsZero() {
		return decimal.Zero
	}
	return qty.Mul(conversionFactor)
}

// CostPerBaseUnit reparte el costo de una unidad de variante entre sus unidades base.
// Un factor no positivo se trata como 1.
func CostPerBaseUnit(unitCost, conversionFactor decimal.Decimal) decimal.Decimal {
	if !conversionFactor.IsPositive() {
		return unitCost
	}
	return unitCost.Div(conversionFactor)
}
